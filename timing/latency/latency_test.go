package latency_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/timing/latency"
)

func TestLatency(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Latency Suite")
}

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	It("charges ALU latency for integer arithmetic", func() {
		Expect(table.GetLatency(insts.Instr{Op: insts.OpAdd})).To(Equal(uint64(1)))
	})

	It("charges load latency for lw and flw", func() {
		Expect(table.GetLatency(insts.Instr{Op: insts.OpLw})).To(Equal(table.Config().LoadLatency))
		Expect(table.GetLatency(insts.Instr{Op: insts.OpFlw})).To(Equal(table.Config().LoadLatency))
	})

	It("charges the sqrt-specific cost for fsqrt", func() {
		Expect(table.GetLatency(insts.Instr{Op: insts.OpFsqrt})).To(Equal(table.Config().FsqrtLatency))
	})

	It("gives fhalf a cheaper cost than the rest of the float sieve", func() {
		Expect(table.GetLatency(insts.Instr{Op: insts.OpFhalf})).To(Equal(uint64(1)))
		Expect(table.GetLatency(insts.Instr{Op: insts.OpFfloor})).To(Equal(uint64(8)))
	})

	It("charges fftoi more than the other Y-category predicates", func() {
		Expect(table.GetLatency(insts.Instr{Op: insts.OpFiszero})).To(Equal(uint64(1)))
		Expect(table.GetLatency(insts.Instr{Op: insts.OpFftoi})).To(Equal(uint64(2)))
	})

	It("identifies memory and branch ops", func() {
		Expect(table.IsMemoryOp(insts.Instr{Op: insts.OpLw, Format: insts.FormatI})).To(BeTrue())
		Expect(table.IsBranchOp(insts.Instr{Op: insts.OpBeq, Format: insts.FormatB})).To(BeTrue())
		Expect(table.IsBranchOp(insts.Instr{Op: insts.OpFbeqz, Format: insts.FormatF})).To(BeTrue())
		Expect(table.IsBranchOp(insts.Instr{Op: insts.OpAdd, Format: insts.FormatR})).To(BeFalse())
	})

	It("applies overrides from a custom config", func() {
		cfg := latency.DefaultConfig()
		cfg.ALULatency = 2
		custom := latency.NewTableWithConfig(cfg)
		Expect(custom.GetLatency(insts.Instr{Op: insts.OpAddi})).To(Equal(uint64(2)))
	})
})
