package icache_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/timing/icache"
)

func TestICache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ICache Suite")
}

var _ = Describe("ICache", func() {
	It("misses on first access and hits on repeat", func() {
		c := icache.New(icache.DefaultConfig())
		hit, lat := c.Access(100)
		Expect(hit).To(BeFalse())
		Expect(lat).To(Equal(uint64(90)))

		hit, lat = c.Access(100)
		Expect(hit).To(BeTrue())
		Expect(lat).To(Equal(uint64(2)))
	})

	It("forces eviction on every distinct address within the same line", func() {
		c := icache.New(icache.DefaultConfig())
		c.Access(0)
		hit, _ := c.Access(icache.NumLines) // aliases line 0 (direct-mapped)
		Expect(hit).To(BeFalse())
		hit, _ = c.Access(0)
		Expect(hit).To(BeFalse())
	})
})
