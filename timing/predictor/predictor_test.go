package predictor_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/timing/predictor"
)

func TestPredictor(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Predictor Suite")
}

var _ = Describe("Predictor", func() {
	It("starts weakly-taken", func() {
		p := predictor.New()
		Expect(p.Predict(12)).To(BeTrue())
	})

	It("saturates to strongly-not-taken after repeated not-taken outcomes", func() {
		p := predictor.New()
		for i := 0; i < 4; i++ {
			p.Update(12, false)
		}
		Expect(p.Predict(12)).To(BeFalse())
	})

	It("saturates to strongly-taken after repeated taken outcomes", func() {
		p := predictor.New()
		for i := 0; i < 4; i++ {
			p.Update(12, true)
		}
		Expect(p.Predict(12)).To(BeTrue())
	})

	It("indexes by pc mod 64, aliasing distant addresses", func() {
		p := predictor.New()
		p.Update(5, true)
		p.Update(5, true)
		Expect(p.Predict(5 + 64)).To(Equal(p.Predict(5)))
	})
})
