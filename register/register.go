// Package register defines register identifiers, their ABI names, and the
// runtime type lattice used by typed memory.
package register

import (
	"fmt"
	"math"
)

// Ty is a runtime type tag drawn from the lattice
// Unknown < {I32, Usize, I32OrUsize} and F32 incomparable with the integer
// branch. I32OrUsize is the join of I32 and Usize.
type Ty uint8

const (
	I32 Ty = iota
	Usize
	I32OrUsize
	F32
	Unknown
)

func (t Ty) String() string {
	switch t {
	case I32:
		return "i32"
	case Usize:
		return "usize"
	case I32OrUsize:
		return "i32 | usize"
	case F32:
		return "f32"
	default:
		return "?"
	}
}

// Dominates reports whether t is at least as precise as other, i.e.
// other <= t in the lattice order (t's stored tag "covers" the request).
func (t Ty) Dominates(other Ty) bool {
	if t == other {
		return true
	}
	switch {
	case other == Unknown:
		return true
	case t == I32OrUsize && (other == I32 || other == Usize):
		return true
	default:
		return false
	}
}

// Refines reports whether other is strictly more precise than t, i.e.
// other > t, so a read requesting other should promote the stored tag.
func (t Ty) Refines(other Ty) bool {
	return other.Dominates(t) && other != t
}

// NumRegs is the count of general-purpose integer/float registers per
// decoder dialect: 32 in dialect v1, 64 in dialect v2.
const (
	NumRegsV1 = 32
	NumRegsV2 = 64
)

// Id is an integer register identifier (5 bits in dialect v1, 6 bits in v2).
type Id uint8

// Zero is the always-zero register: writes are discarded, reads return 0.
const Zero Id = 0

// Sp, Hp are the ABI-fixed registers the CPU initializes specially.
const (
	Ra Id = 1
	Sp Id = 2
	Gp Id = 3
	Hp Id = 4
)

var abiNamesV1 = []string{
	"zero", "ra", "sp", "gp", "hp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Name returns the ABI name for an integer register id. Ids beyond the
// known table are rendered numerically rather than panicking, since
// disassembly must remain best-effort (spec §4.7.1).
func (id Id) Name() string {
	if int(id) < len(abiNamesV1) {
		return abiNamesV1[id]
	}
	return fmt.Sprintf("x%d", id)
}

func (id Id) String() string { return id.Name() }

// IsZero reports whether id names the hardwired-zero register.
func (id Id) IsZero() bool { return id == Zero }

// Ty returns the static type of an integer register: register 1 (ra, used
// as an address/link register) is Usize, all others are I32 (spec §3).
func (id Id) Ty() Ty {
	if id == Ra {
		return Usize
	}
	return I32
}

// FId is a float register identifier.
type FId uint8

var abiNamesF = []string{
	"f0", "f1", "f2", "f3", "f4", "f5", "f6", "f7",
	"f8", "f9", "f10", "f11", "f12", "f13", "f14", "f15",
	"f16", "f17", "f18", "f19", "f20", "f21", "f22", "f23",
	"f24", "f25", "f26", "f27", "f28", "f29", "f30", "f31",
}

func (id FId) Name() string {
	if int(id) < len(abiNamesF) {
		return abiNamesF[id]
	}
	return fmt.Sprintf("f%d", id)
}

func (id FId) String() string { return id.Name() }

// TypedU32 is a 32-bit payload tagged with its runtime type, printed
// per-type the way the original's Display impl does (spec §3, §9).
type TypedU32 struct {
	Ty    Ty
	Value uint32
}

// AsI returns the value as a signed integer if its tag is on the integer
// branch of the lattice (I32, Usize or I32OrUsize).
func (t TypedU32) AsI() (int32, bool) {
	if t.Ty.Dominates(I32OrUsize) || t.Ty == I32OrUsize || t.Ty == I32 || t.Ty == Usize {
		return int32(t.Value), true
	}
	return 0, false
}

// AsI32 returns the value as a signed integer only if the tag is exactly I32.
func (t TypedU32) AsI32() (int32, bool) {
	if t.Ty == I32 {
		return int32(t.Value), true
	}
	return 0, false
}

// AsF32 returns the value as a float only if the tag is exactly F32.
func (t TypedU32) AsF32() (float32, bool) {
	if t.Ty == F32 {
		return float32FromBits(t.Value), true
	}
	return 0, false
}

func (t TypedU32) String() string {
	switch t.Ty {
	case I32:
		return fmt.Sprintf("%d", int32(t.Value))
	case Usize:
		return fmt.Sprintf("%#010x", t.Value)
	case F32:
		return fmt.Sprintf("%g", float32FromBits(t.Value))
	default:
		return fmt.Sprintf("%d (%#010x)", int32(t.Value), t.Value)
	}
}

func float32FromBits(v uint32) float32 {
	return math.Float32frombits(v)
}
