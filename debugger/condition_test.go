package debugger_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/m2sim/debugger"
	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/register"
)

func TestDebugger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Debugger Suite")
}

var _ = Describe("Breakpoint", func() {
	It("fires unconditionally when Cond is nil", func() {
		mem := emu.NewMemory(0, 1)
		cpu := emu.New(mem, insts.DialectV1, 0, 1)
		bp := debugger.Breakpoint{Addr: 0}
		ok, err := bp.Fires(cpu)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("evaluates a register-vs-immediate condition", func() {
		mem := emu.NewMemory(0, 1)
		cpu := emu.New(mem, insts.DialectV1, 0, 1)
		cpu.Reg.SetI(register.Id(5), 10)

		bp := debugger.Breakpoint{
			Addr: 0,
			Cond: &debugger.Condition{
				Left:     debugger.Reg{Id: register.Id(5)},
				Relation: debugger.Ge,
				Right:    debugger.Imm{Value: 10},
			},
		}
		ok, err := bp.Fires(cpu)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("does not fire when the condition is false", func() {
		mem := emu.NewMemory(0, 1)
		cpu := emu.New(mem, insts.DialectV1, 0, 1)
		bp := debugger.Breakpoint{
			Addr: 0,
			Cond: &debugger.Condition{
				Left:     debugger.Reg{Id: register.Id(5)},
				Relation: debugger.Gt,
				Right:    debugger.Imm{Value: 0},
			},
		}
		ok, err := bp.Fires(cpu)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
