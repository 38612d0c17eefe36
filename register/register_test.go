package register_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/register"
)

func TestRegister(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Register Suite")
}

var _ = Describe("Ty lattice", func() {
	It("orders Unknown below every concrete type", func() {
		Expect(register.Unknown.Dominates(register.I32)).To(BeFalse())
		Expect(register.I32.Dominates(register.Unknown)).To(BeTrue())
	})

	It("makes I32OrUsize the join of I32 and Usize", func() {
		Expect(register.I32OrUsize.Dominates(register.I32)).To(BeTrue())
		Expect(register.I32OrUsize.Dominates(register.Usize)).To(BeTrue())
		Expect(register.I32.Dominates(register.I32OrUsize)).To(BeFalse())
	})

	It("keeps F32 incomparable with the integer branch", func() {
		Expect(register.F32.Dominates(register.I32)).To(BeFalse())
		Expect(register.I32.Dominates(register.F32)).To(BeFalse())
	})

	It("reports refinement only for strictly more precise requests", func() {
		Expect(register.Unknown.Refines(register.I32)).To(BeTrue())
		Expect(register.I32.Refines(register.Unknown)).To(BeFalse())
		Expect(register.I32.Refines(register.I32)).To(BeFalse())
	})
})

var _ = Describe("register ids", func() {
	It("names zero specially and gives ra the Usize type", func() {
		Expect(register.Zero.IsZero()).To(BeTrue())
		Expect(register.Zero.Name()).To(Equal("zero"))
		Expect(register.Ra.Ty()).To(Equal(register.Usize))
		Expect(register.Sp.Ty()).To(Equal(register.I32))
	})
})

var _ = Describe("TypedU32", func() {
	It("renders I32 as a signed decimal", func() {
		v := register.TypedU32{Ty: register.I32, Value: 0xFFFFFFFF}
		Expect(v.String()).To(Equal("-1"))
	})

	It("only yields AsI32 when tagged exactly I32", func() {
		v := register.TypedU32{Ty: register.Usize, Value: 4}
		_, ok := v.AsI32()
		Expect(ok).To(BeFalse())
	})
})
