package insts_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/register"
)

func TestInsts(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Insts Suite")
}

var _ = Describe("Decoder", func() {
	Context("dialect v1", func() {
		d := insts.New(insts.DialectV1)

		It("decodes the all-zero word as End", func() {
			in, err := d.Decode(0x00000000)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Format).To(Equal(insts.FormatMisc))
			Expect(in.Op).To(Equal(insts.OpEnd))
		})

		It("decodes add x1, x2, x3", func() {
			// R-format: funct7=0, rs2=3, rs1=2, funct3=0, rd=1, opcode=0110011
			word := uint32(3)<<20 | uint32(2)<<15 | uint32(1)<<7 | 0b0110011
			in, err := d.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Op).To(Equal(insts.OpAdd))
			Expect(in.Rd).To(Equal(register.Id(1)))
			Expect(in.Rs1).To(Equal(register.Id(2)))
			Expect(in.Rs2).To(Equal(register.Id(3)))
		})

		It("decodes addi with a negative immediate", func() {
			// imm=-1 (12 bits all set), rs1=5, rd=6, funct3=0, opcode=0010011
			imm := uint32(0xFFF)
			word := imm<<20 | uint32(5)<<15 | uint32(6)<<7 | 0b0010011
			in, err := d.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Op).To(Equal(insts.OpAddi))
			Expect(in.Imm).To(Equal(int32(-1)))
		})

		It("decodes slli masking the shift amount to 5 bits", func() {
			imm := uint32(0b11111)
			word := imm<<20 | uint32(5)<<15 | uint32(6)<<7 | uint32(0x1)<<12 | 0b0010011
			in, err := d.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Op).To(Equal(insts.OpSlli))
			Expect(in.Imm & 0x1F).To(Equal(int32(31)))
		})

		It("decodes the W-format float branches", func() {
			word := uint32(0b0010111) | uint32(1)<<12 | 0b1010111
			_ = word
			// fblt f1, f2: rs1=1, rs2=2, funct3=1, opcode=0b1010111
			w := uint32(2)<<20 | uint32(1)<<15 | uint32(1)<<12 | 0b1010111
			in, err := d.Decode(w)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Op).To(Equal(insts.OpFblt))
		})

		It("rejects an unrecognized opcode", func() {
			_, err := d.Decode(0x0000007F)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("dialect v2", func() {
		d := insts.New(insts.DialectV2)

		It("decodes the sentinel word as End", func() {
			in, err := d.Decode(1 << 31)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Op).To(Equal(insts.OpEnd))
		})

		It("decodes add rd, rs1, rs2", func() {
			// opcode=0000, rd=4..9, funct3=10..12, rs1=13..18, rs2=19..24
			word := uint32(3)<<19 | uint32(2)<<13 | uint32(0)<<10 | uint32(1)<<4 | 0b0000
			in, err := d.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.Op).To(Equal(insts.OpAdd))
			Expect(in.Rd).To(Equal(register.Id(1)))
			Expect(in.Rs1).To(Equal(register.Id(2)))
			Expect(in.Rs2).To(Equal(register.Id(3)))
		})

		It("round-trips through String without panicking", func() {
			word := uint32(3)<<19 | uint32(2)<<13 | uint32(0)<<10 | uint32(1)<<4 | 0b0000
			in, err := d.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(in.String()).To(ContainSubstring("add"))
		})
	})
})
