// Package emu implements the functional core of the processor: register
// file, typed memory, and the single-tick five-stage datapath (spec §4).
package emu

import (
	"github.com/sarchlab/m2sim/register"
)

// RegFile holds the integer and float register banks. x0/zero always reads
// as 0 and writes to it are discarded, matching the teacher's regfile idiom
// of a fixed hardwired-zero slot.
type RegFile struct {
	dialect register.Ty
	x       []register.TypedU32
	f       [32]float32

	spObserver func(wordAddr uint32)
}

// NewRegFile allocates a register file sized for the given dialect (32
// integer registers for v1, 64 for v2; spec §4.1/§4.2) and initializes it
// per spec §3: sp to the last word address of RAM, hp to the first free
// word past the loaded image (dataLen+textLen), and float register 1 to
// 1.0. spByte and hpByte are byte addresses, consistent with how every
// other address-holding register is interpreted by the load/store
// datapath (effective address = reg + imm, shifted right by 2).
func NewRegFile(numRegs int, spByte, hpByte uint32) *RegFile {
	x := make([]register.TypedU32, numRegs)
	for i := range x {
		x[i] = register.TypedU32{Ty: register.Unknown, Value: 0}
	}
	x[register.Sp] = register.TypedU32{Ty: register.Usize, Value: spByte}
	x[register.Hp] = register.TypedU32{Ty: register.Usize, Value: hpByte}
	x[register.Ra] = register.TypedU32{Ty: register.Usize, Value: 0}
	r := &RegFile{x: x}
	r.f[1] = 1.0
	return r
}

// SetSpObserver installs a callback fired with the word-address form of sp
// every time sp is written, driving the memory-region classifier's
// update_sp tracking (spec §3/§4.3).
func (r *RegFile) SetSpObserver(fn func(wordAddr uint32)) { r.spObserver = fn }

func (r *RegFile) notifySp(id register.Id, byteVal uint32) {
	if id == register.Sp && r.spObserver != nil {
		r.spObserver(byteVal >> 2)
	}
}

// GetI reads an integer register's raw bits, ignoring its type tag.
func (r *RegFile) GetI(id register.Id) uint32 {
	if id.IsZero() {
		return 0
	}
	return r.x[id].Value
}

// GetTyped reads an integer register together with its current type tag.
func (r *RegFile) GetTyped(id register.Id) register.TypedU32 {
	if id.IsZero() {
		return register.TypedU32{Ty: register.I32OrUsize, Value: 0}
	}
	return r.x[id]
}

// SetI writes an integer register, retagging it as I32OrUsize: every
// arithmetic write produces a value usable as either an i32 or an address,
// matching the original's "stores reset the tag" memory-unification rule
// applied here to register writes.
func (r *RegFile) SetI(id register.Id, v uint32) {
	if id.IsZero() {
		return
	}
	r.x[id] = register.TypedU32{Ty: register.I32OrUsize, Value: v}
	r.notifySp(id, v)
}

// SetTyped writes an integer register with an explicit type tag, used when
// a value is known to be exactly a usize (e.g. jal/jalr link targets).
func (r *RegFile) SetTyped(id register.Id, ty register.Ty, v uint32) {
	if id.IsZero() {
		return
	}
	r.x[id] = register.TypedU32{Ty: ty, Value: v}
	r.notifySp(id, v)
}

// GetF reads a float register.
func (r *RegFile) GetF(id register.FId) float32 {
	return r.f[id]
}

// SetF writes a float register.
func (r *RegFile) SetF(id register.FId, v float32) {
	r.f[id] = v
}

// Snapshot returns a copy of every integer and float register value, used
// by the debugger's register-file view (spec §4.7).
func (r *RegFile) Snapshot() (ints []register.TypedU32, floats [32]float32) {
	ints = make([]register.TypedU32, len(r.x))
	copy(ints, r.x)
	return ints, r.f
}
