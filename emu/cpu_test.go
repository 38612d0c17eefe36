package emu_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/register"
)

func TestEmu(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Emu Suite")
}

func asmAddi(rd, rs1 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return u<<20 | rs1<<15 | rd<<7 | 0b0010011
}

func asmOutb(rs1 uint32) uint32 {
	return rs1<<15 | 0b0101011
}

var _ = Describe("CPU", func() {
	It("executes addi then halts on the end sentinel", func() {
		mem := emu.NewMemory(0, 3)
		mem.LoadText([]uint32{
			asmAddi(1, 0, 5),
			asmOutb(1),
			0, // end
		})
		cpu := emu.New(mem, insts.DialectV1, 0, 3, emu.WithStats())

		r1, err := cpu.Cycle(false)
		Expect(err).NotTo(HaveOccurred())
		Expect(r1.Flow).To(Equal(emu.FlowContinue))
		Expect(cpu.Reg.GetI(1)).To(Equal(uint32(5)))

		r2, err := cpu.Cycle(false)
		Expect(err).NotTo(HaveOccurred())
		Expect(cpu.Output).To(Equal([]byte{5}))
		_ = r2

		r3, err := cpu.Cycle(false)
		Expect(err).NotTo(HaveOccurred())
		Expect(r3.Flow).To(Equal(emu.FlowExit))

		Expect(cpu.Stats()).NotTo(BeEmpty())
	})

	It("keeps the zero register pinned at zero", func() {
		mem := emu.NewMemory(0, 1)
		mem.LoadText([]uint32{asmAddi(0, 0, 7)})
		cpu := emu.New(mem, insts.DialectV1, 0, 1)
		_, err := cpu.Cycle(false)
		Expect(err).NotTo(HaveOccurred())
		Expect(cpu.Reg.GetI(0)).To(Equal(uint32(0)))
	})

	It("initializes sp, hp, and float register 1 per the image layout", func() {
		mem := emu.NewMemory(2, 1)
		mem.LoadData([]uint32{0, 0})
		mem.LoadText([]uint32{0}) // end
		cpu := emu.New(mem, insts.DialectV1, 2, 1)

		Expect(cpu.Reg.GetI(register.Sp)).To(Equal(uint32(emu.RAMWords-1) * 4))
		Expect(cpu.Reg.GetI(register.Hp)).To(Equal(uint32(3) * 4))
		Expect(cpu.Reg.GetF(1)).To(Equal(float32(1.0)))
	})

	It("writes to the data section at word offset 0, not after the text", func() {
		mem := emu.NewMemory(1, 2)
		mem.LoadData([]uint32{99})
		mem.LoadText([]uint32{asmAddi(1, 0, 5), 0})
		v, _, err := mem.Get(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(99)))
	})
})
