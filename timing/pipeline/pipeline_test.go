package pipeline_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/timing/icache"
	"github.com/sarchlab/m2sim/timing/latency"
	"github.com/sarchlab/m2sim/timing/pipeline"
	"github.com/sarchlab/m2sim/timing/predictor"
)

func TestPipeline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pipeline Suite")
}

var _ = Describe("Pipeline timing model", func() {
	It("charges base latency with no hazard and no cache", func() {
		m := pipeline.New(latency.NewTable(), nil, nil)
		stat := m.Charge(insts.Instr{Op: insts.OpAdd, Format: insts.FormatR}, 0, 0, false, false)
		Expect(stat.StallCycles).To(Equal(uint64(0)))
		Expect(stat.TotalCycles).To(Equal(stat.BaseCycles))
	})

	It("charges a misprediction penalty when the outcome diverges", func() {
		m := pipeline.New(latency.NewTable(), nil, predictor.New())
		// A fresh predictor is weakly taken, so a not-taken outcome diverges.
		stat := m.Charge(insts.Instr{Op: insts.OpBeq, Format: insts.FormatB}, 10, 0, false, false)
		Expect(stat.MispredictCycles).To(BeNumerically(">", 0))
	})

	It("ignores the cache entirely for non-memory instructions", func() {
		m := pipeline.New(latency.NewTable(), icache.New(icache.DefaultConfig()), nil)
		stat := m.Charge(insts.Instr{Op: insts.OpAdd, Format: insts.FormatR}, 5, 100, false, false)
		Expect(stat.MemStall).To(Equal(uint64(0)))
	})

	It("charges the DDR2 miss cost for a non-BRAM load on a cache miss", func() {
		m := pipeline.New(latency.NewTable(), icache.New(icache.DefaultConfig()), nil)
		stat := m.Charge(insts.Instr{Op: insts.OpLw, Format: insts.FormatI}, 5, 20000, false, false)
		Expect(stat.MemStall).To(Equal(uint64(90)))
	})

	It("charges only the BRAM cost for a store to a BRAM address, bypassing the cache", func() {
		m := pipeline.New(latency.NewTable(), icache.New(icache.DefaultConfig()), nil)
		stat := m.Charge(insts.Instr{Op: insts.OpSw, Format: insts.FormatS}, 5, 100, true, false)
		Expect(stat.MemStall).To(Equal(uint64(1)))
	})
})
