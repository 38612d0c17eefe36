package sim_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/debugger"
	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/register"
	"github.com/sarchlab/m2sim/sim"
)

func TestSim(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sim Suite")
}

func asmAddi(rd, rs1 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return u<<20 | rs1<<15 | rd<<7 | 0b0010011
}

var _ = Describe("Simulator", func() {
	It("runs to completion on the end sentinel", func() {
		mem := emu.NewMemory(0, 2)
		mem.LoadText([]uint32{asmAddi(1, 0, 3), 0})
		cpu := emu.New(mem, insts.DialectV1, 0, 2)
		s := sim.New(cpu)

		cf, err := s.Run(sim.RunMode{})
		Expect(err).NotTo(HaveOccurred())
		Expect(cf.Exited).To(BeTrue())
		Expect(cpu.Reg.GetI(register.Id(1))).To(Equal(uint32(3)))
	})

	It("stops at an unconditional breakpoint", func() {
		mem := emu.NewMemory(0, 3)
		mem.LoadText([]uint32{asmAddi(1, 0, 1), asmAddi(1, 1, 1), 0})
		cpu := emu.New(mem, insts.DialectV1, 0, 3)
		s := sim.New(cpu)
		s.AddBreakpoint(debugger.Breakpoint{Addr: 1})

		cf, err := s.Run(sim.RunMode{})
		Expect(err).NotTo(HaveOccurred())
		Expect(cf.Exited).To(BeFalse())
		Expect(cf.Break.Reason).To(Equal(sim.ReasonBreakpoint))
		Expect(s.PC()).To(Equal(uint32(1)))
	})

	It("executes exactly N steps under RunStepMode", func() {
		mem := emu.NewMemory(0, 3)
		mem.LoadText([]uint32{asmAddi(1, 0, 1), asmAddi(1, 1, 1), 0})
		cpu := emu.New(mem, insts.DialectV1, 0, 3)
		s := sim.New(cpu)

		cf, err := s.Run(sim.RunStepMode{N: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(cf.Break.Reason).To(Equal(sim.ReasonStepEnded))
		Expect(s.Cycle()).To(Equal(uint64(1)))
	})
})
