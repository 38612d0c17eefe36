package loader_test

import (
	"encoding/binary"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/loader"
)

func TestLoader(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Loader Suite")
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

var _ = Describe("Load", func() {
	It("parses a well-formed image", func() {
		var raw []byte
		raw = append(raw, le32(2)...) // data_len
		raw = append(raw, le32(1)...) // text_len
		raw = append(raw, le32(10)...)
		raw = append(raw, le32(20)...)
		raw = append(raw, le32(0)...) // end sentinel

		p, err := loader.Load(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Data).To(Equal([]uint32{10, 20}))
		Expect(p.Text).To(Equal([]uint32{0}))
	})

	It("rejects a header shorter than 8 bytes", func() {
		_, err := loader.Load([]byte{1, 2, 3})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a body shorter than the header declares", func() {
		raw := append(le32(5), le32(0)...)
		_, err := loader.Load(raw)
		Expect(err).To(HaveOccurred())
	})
})
