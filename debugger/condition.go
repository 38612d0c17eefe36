// Package debugger implements breakpoint condition expressions (spec
// §4.7): a small comparison tree over register, float-register, memory,
// and immediate operands, evaluated against a running CPU to decide
// whether a conditional breakpoint fires.
package debugger

import (
	"fmt"
	"math"

	"github.com/sarchlab/m2sim/emu"
	"github.com/sarchlab/m2sim/register"
)

// Relation names a comparison operator.
type Relation uint8

const (
	Eq Relation = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Operand evaluates to a signed 32-bit value against a running CPU.
type Operand interface {
	Eval(cpu *emu.CPU) (int32, error)
}

// Reg reads an integer register.
type Reg struct{ Id register.Id }

func (r Reg) Eval(cpu *emu.CPU) (int32, error) { return int32(cpu.Reg.GetI(r.Id)), nil }

// FReg reads a float register as its IEEE-754 bit pattern reinterpreted
// as an int32 for uniform comparison.
type FReg struct{ Id register.FId }

func (r FReg) Eval(cpu *emu.CPU) (int32, error) {
	return int32(math.Float32bits(cpu.Reg.GetF(r.Id))), nil
}

// Mem reads a data-memory word.
type Mem struct{ Addr uint32 }

func (m Mem) Eval(cpu *emu.CPU) (int32, error) {
	v, _, err := cpu.Mem.Get(m.Addr)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// Imm is a constant operand.
type Imm struct{ Value int32 }

func (i Imm) Eval(*emu.CPU) (int32, error) { return i.Value, nil }

// Condition is a single comparison between two operands.
type Condition struct {
	Left     Operand
	Relation Relation
	Right    Operand
}

// Eval reports whether the condition currently holds.
func (c Condition) Eval(cpu *emu.CPU) (bool, error) {
	l, err := c.Left.Eval(cpu)
	if err != nil {
		return false, err
	}
	r, err := c.Right.Eval(cpu)
	if err != nil {
		return false, err
	}
	switch c.Relation {
	case Eq:
		return l == r, nil
	case Ne:
		return l != r, nil
	case Lt:
		return l < r, nil
	case Le:
		return l <= r, nil
	case Gt:
		return l > r, nil
	case Ge:
		return l >= r, nil
	default:
		return false, fmt.Errorf("unknown relation %d", c.Relation)
	}
}

// Breakpoint pairs a word address with an optional condition; an
// unconditional breakpoint has Cond == nil.
type Breakpoint struct {
	Addr uint32
	Cond *Condition
}

// Fires reports whether this breakpoint should halt execution given the
// CPU is currently at its address.
func (b Breakpoint) Fires(cpu *emu.CPU) (bool, error) {
	if b.Cond == nil {
		return true, nil
	}
	return b.Cond.Eval(cpu)
}
