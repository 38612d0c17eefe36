package debugsym_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/debugsym"
)

func TestDebugsym(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Debugsym Suite")
}

var _ = Describe("Table", func() {
	t := debugsym.New([]debugsym.Symbol{
		{Name: "main", Addr: 100},
		{Name: "loop", Addr: 120},
	})

	It("resolves exact addresses", func() {
		name, ok := t.AtAddr(120)
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("loop"))
	})

	It("finds the nearest preceding symbol", func() {
		s, ok := t.NearestSymbol(115)
		Expect(ok).To(BeTrue())
		Expect(s.Name).To(Equal("main"))
	})

	It("reports nothing below the first symbol", func() {
		_, ok := t.NearestSymbol(50)
		Expect(ok).To(BeFalse())
	})
})
