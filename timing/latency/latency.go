// Package latency supplies the EX-stage cycle cost of each instruction to
// the optional pipeline timing model (spec §4.6).
package latency

import (
	"github.com/sarchlab/m2sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *Config
}

// NewTable creates a latency table using the default cost table.
func NewTable() *Table {
	return &Table{config: DefaultConfig()}
}

// NewTableWithConfig creates a latency table from a caller-supplied config.
func NewTableWithConfig(config *Config) *Table {
	return &Table{config: config}
}

// GetLatency returns the EX-stage cycle cost for the given instruction.
func (t *Table) GetLatency(in insts.Instr) uint64 {
	switch in.Op {
	case insts.OpAdd, insts.OpSub, insts.OpXor, insts.OpOr, insts.OpAnd,
		insts.OpSll, insts.OpSra, insts.OpSlt, insts.OpMin, insts.OpMax,
		insts.OpAddi, insts.OpXori, insts.OpOri, insts.OpAndi, insts.OpSlli, insts.OpSlti:
		return t.config.ALULatency

	case insts.OpBeq, insts.OpBne, insts.OpBlt, insts.OpBge, insts.OpBxor, insts.OpBxnor,
		insts.OpBeqi, insts.OpBnei, insts.OpBlti, insts.OpBgei, insts.OpBgti, insts.OpBlei,
		insts.OpFblt, insts.OpFbge, insts.OpFbeqz, insts.OpFbnez:
		return t.config.BranchLatency

	case insts.OpJal, insts.OpJalr:
		return t.config.JumpLatency

	case insts.OpLw, insts.OpFlw:
		return t.config.LoadLatency

	case insts.OpSw, insts.OpFsw:
		return t.config.StoreLatency

	case insts.OpInw, insts.OpOutb, insts.OpFinw:
		return t.config.IOLatency

	case insts.OpFadd:
		return t.config.FaddLatency
	case insts.OpFsub:
		return t.config.FsubLatency
	case insts.OpFmul:
		return t.config.FmulLatency
	case insts.OpFdiv:
		return t.config.FdivLatency
	case insts.OpFsgnj, insts.OpFsgnjn, insts.OpFsgnjx:
		return t.config.FsignLatency

	case insts.OpFmadd, insts.OpFmsub, insts.OpFnmadd, insts.OpFnmsub:
		return t.config.FmaLatency

	case insts.OpFsqrt:
		return t.config.FsqrtLatency
	case insts.OpFhalf:
		return t.config.FhalfLatency
	case insts.OpFfloor:
		return t.config.FfloorLatency
	case insts.OpFfrac:
		return t.config.FfracLatency
	case insts.OpFinv:
		return t.config.FinvLatency

	case insts.OpFlt, insts.OpFiszero, insts.OpFispos, insts.OpFisneg:
		return t.config.FpredLatency

	case insts.OpFitof:
		return t.config.FitofLatency
	case insts.OpFftoi:
		return t.config.FftoiLatency

	default:
		return 1
	}
}

// MispredictPenalty returns the extra cycles charged on a branch
// misprediction.
func (t *Table) MispredictPenalty() uint64 { return t.config.MispredictPenalty }

// IsMemoryOp reports whether the instruction touches data memory.
func (t *Table) IsMemoryOp(in insts.Instr) bool {
	switch in.Op {
	case insts.OpLw, insts.OpSw, insts.OpFlw, insts.OpFsw:
		return true
	default:
		return false
	}
}

// IsBranchOp reports whether the instruction is any kind of conditional
// branch (integer or float), i.e. subject to prediction.
func (t *Table) IsBranchOp(in insts.Instr) bool {
	switch in.Format {
	case insts.FormatB, insts.FormatP:
		return true
	}
	switch in.Op {
	case insts.OpFblt, insts.OpFbge, insts.OpFbeqz, insts.OpFbnez:
		return true
	default:
		return false
	}
}

// Config returns the underlying cost table.
func (t *Table) Config() *Config { return t.config }
