// Package pipeline layers an optional cycle-COUNTING model on top of the
// functional-in-one-tick CPU core (spec §4.6): it never changes execution
// semantics, only how many clock cycles each instruction is charged.
package pipeline

import (
	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/timing/icache"
	"github.com/sarchlab/m2sim/timing/latency"
	"github.com/sarchlab/m2sim/timing/predictor"
)

// depth is the number of in-flight pipeline slots tracked for hazard
// detection (fetch/decode/read/execute/writeback, spec §4.4).
const depth = 5

// slot records one in-flight instruction's destination, used to detect a
// RAW hazard against instructions still in the pipeline.
type slot struct {
	valid     bool
	writesInt bool
	dest      uint8
	writesF   bool
	fdest     uint8
}

// bramLatency is the access cost for word addresses backed by block RAM,
// bypassing the cache/DDR2 model entirely (spec §4.4.2/§4.6).
const bramLatency = 1

// PipelineStat is the per-instruction timing breakdown the caller can
// inspect after a cycle, mirroring the teacher's per-op trace line shape.
type PipelineStat struct {
	BaseCycles       uint64
	StallCycles      uint64
	MemStall         uint64
	MispredictCycles uint64
	TotalCycles      uint64
}

// Model charges cycles for a stream of instructions by combining the
// latency table, the instruction cache, and a branch predictor. It holds
// no reference to the functional CPU: the caller decodes/executes with
// emu.CPU and feeds the resulting instructions here to accumulate timing.
type Model struct {
	lat   *latency.Table
	cache *icache.ICache
	pred  *predictor.Predictor

	window [depth]slot
	cycles uint64
}

// New constructs a timing model from its three sub-components. Passing a
// nil icache or predictor disables that contribution (its cost is zero).
func New(lat *latency.Table, cache *icache.ICache, pred *predictor.Predictor) *Model {
	return &Model{lat: lat, cache: cache, pred: pred}
}

// Cycles returns the total cycles charged so far.
func (m *Model) Cycles() uint64 { return m.cycles }

func (m *Model) pushSlot(s slot) {
	copy(m.window[1:], m.window[:depth-1])
	m.window[0] = s
}

func (m *Model) hasHazard(in insts.Instr) bool {
	rs := []uint8{}
	if in.Rs1 != 0 {
		rs = append(rs, uint8(in.Rs1))
	}
	if in.Rs2 != 0 {
		rs = append(rs, uint8(in.Rs2))
	}
	for _, s := range m.window {
		if !s.valid {
			continue
		}
		if s.writesInt {
			for _, r := range rs {
				if r == s.dest {
					return true
				}
			}
		}
	}
	return false
}

// Charge accounts for one executed instruction: the memory-access-stage
// cost for load/store instructions (BRAM/cache-hit/DDR2-miss), a stall
// cycle if it reads a register still in flight, the EX-stage cost from the
// latency table, and a misprediction penalty if the instruction was a
// branch whose outcome diverged from the predictor.
//
// fetchPC is the word address the instruction itself was fetched from (the
// predictor is queried at fetchPC+1, the already-incremented pc, per spec
// §4.4.1/§9). memAddr is the effective data address (rs1+imm, word units)
// and isBRAM reports whether that address bypasses the cache; both are
// only consulted for load/store instructions (lat.IsMemoryOp).
func (m *Model) Charge(in insts.Instr, fetchPC, memAddr uint32, isBRAM, branchTaken bool) PipelineStat {
	stat := PipelineStat{}

	if m.lat.IsMemoryOp(in) {
		switch {
		case isBRAM:
			stat.MemStall = bramLatency
		case m.cache != nil:
			_, lat := m.cache.Access(memAddr)
			stat.MemStall = lat
		}
	}

	if m.hasHazard(in) {
		stat.StallCycles = 1
	}

	stat.BaseCycles = m.lat.GetLatency(in)

	if m.pred != nil && m.lat.IsBranchOp(in) {
		predicted := m.pred.Predict(fetchPC + 1)
		if predicted != branchTaken {
			stat.MispredictCycles = m.lat.MispredictPenalty()
		}
		m.pred.Update(fetchPC+1, branchTaken)
	}

	stat.TotalCycles = stat.BaseCycles + stat.StallCycles + stat.MemStall + stat.MispredictCycles
	m.cycles += stat.TotalCycles

	m.pushSlot(slot{
		valid:     true,
		writesInt: writesIntReg(in),
		dest:      uint8(in.Rd),
		writesF:   writesFloatReg(in),
		fdest:     uint8(in.Frd),
	})

	return stat
}

func writesIntReg(in insts.Instr) bool {
	switch in.Format {
	case insts.FormatR, insts.FormatI, insts.FormatJ:
		return in.Rd != 0
	case insts.FormatF:
		switch in.Op {
		case insts.OpFftoi, insts.OpFlt, insts.OpFiszero, insts.OpFispos, insts.OpFisneg:
			return in.Rd != 0
		}
	}
	return false
}

func writesFloatReg(in insts.Instr) bool {
	return in.Format == insts.FormatF
}
