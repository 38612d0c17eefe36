package emu

import (
	"fmt"
	"math"

	"github.com/sarchlab/m2sim/insts"
	"github.com/sarchlab/m2sim/register"
	"github.com/sarchlab/m2sim/timing/icache"
	"github.com/sarchlab/m2sim/timing/latency"
	"github.com/sarchlab/m2sim/timing/pipeline"
	"github.com/sarchlab/m2sim/timing/predictor"
)

// RuntimeError reports a failure during instruction execution that halts
// the simulation (spec §7): decode failure, memory violation, or an
// unimplemented opcode reaching execute.
type RuntimeError struct {
	Cause error
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("runtime error: %s", e.Cause) }
func (e *RuntimeError) Unwrap() error { return e.Cause }

// Flow describes how a single cycle affected control flow, consumed by the
// Simulator facade's single_cycle loop (spec §4.7).
type Flow uint8

const (
	FlowContinue Flow = iota
	FlowExit
)

// Option configures a CPU at construction time, following the teacher's
// functional-options idiom for its Emulator type.
type Option func(*CPU)

// WithStats enables per-opcode execution counters (spec §9's "stat"
// dimension).
func WithStats() Option {
	return func(c *CPU) { c.stats = make(map[insts.InstrId]uint64) }
}

// WithTypedMemory enables the typed-memory unification lattice (spec §9's
// "typed_memory" dimension). When disabled, Get/Set bypass type checks.
func WithTypedMemory() Option {
	return func(c *CPU) { c.typedMemory = true }
}

// WithTiming opts the CPU into the optional pipeline cycle-count model
// (spec §4.6): every Cycle call charges against lat/cache/pred and the
// result is reported on CycleResult.Cycles. A nil cache or pred disables
// that sub-component's contribution, matching pipeline.New.
func WithTiming(lat *latency.Table, cache *icache.ICache, pred *predictor.Predictor) Option {
	return func(c *CPU) { c.timing = pipeline.New(lat, cache, pred) }
}

// CPU is the single-tick functional core: one call to Cycle executes the
// fetch/decode/register-read/execute/memory-access/write-back pipeline for
// one instruction (spec §4.4 — the five stages are modeled functionally,
// not as overlapping pipeline registers; timing is a separate optional
// layer, see timing/pipeline).
type CPU struct {
	Mem     *Memory
	Reg     *RegFile
	decoder *insts.Decoder
	dialect insts.Dialect

	pc uint32

	stats       map[insts.InstrId]uint64
	typedMemory bool

	timing *pipeline.Model

	Output []byte
	Input  []byte
	inPos  int

	Trace []string
}

// New constructs a CPU over the given memory, ready to execute from the
// first instruction word at word address dataLen (spec §6.1). dataLen and
// textLen (in words) also seed the register file's sp/hp initialization
// and the memory region classifier (spec §3/§4.3).
func New(mem *Memory, dialect insts.Dialect, dataLen, textLen uint32, opts ...Option) *CPU {
	numRegs := register.NumRegsV1
	if dialect == insts.DialectV2 {
		numRegs = register.NumRegsV2
	}

	spByte := (uint32(RAMWords) - 1) * 4
	hpByte := (dataLen + textLen) * 4
	reg := NewRegFile(numRegs, spByte, hpByte)

	mem.InitRegions(dataLen+textLen, RAMWords-1)
	reg.SetSpObserver(mem.UpdateSp)

	c := &CPU{
		Mem:     mem,
		Reg:     reg,
		decoder: insts.New(dialect),
		dialect: dialect,
		pc:      dataLen,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// PC returns the current program counter as a word address.
func (c *CPU) PC() uint32 { return c.pc }

// Stats returns the per-instruction execution counts, or nil if WithStats
// was not supplied.
func (c *CPU) Stats() map[insts.InstrId]uint64 { return c.stats }

// CycleResult reports the outcome of one full instruction cycle.
type CycleResult struct {
	Flow   Flow
	Instr  insts.Instr
	Spy    *SpyResult
	Cycles uint64
}

// Cycle executes one instruction: fetch, decode, execute, memory access,
// and write-back, advancing pc unless the instruction redirected it
// (branch/jump). Returns a RuntimeError on decode failure or memory
// violation (spec §4.4.1, §7).
func (c *CPU) Cycle(doTrace bool) (CycleResult, error) {
	word, err := c.Mem.GetFromPC(c.pc)
	if err != nil {
		return CycleResult{}, &RuntimeError{err}
	}

	in, err := c.decoder.Decode(word)
	if err != nil {
		return CycleResult{}, &RuntimeError{err}
	}

	if c.stats != nil {
		c.stats[in.ID()]++
	}

	fetchPC := c.pc
	nextPC := c.pc + 1
	var spy *SpyResult
	flow := FlowContinue
	branchTaken := false
	isMemOp := false
	var memAddr uint32

	switch in.Format {
	case insts.FormatMisc:
		flow = FlowExit

	case insts.FormatR:
		a, b := c.Reg.GetI(in.Rs1), c.Reg.GetI(in.Rs2)
		var res uint32
		switch in.Op {
		case insts.OpAdd:
			res = a + b
		case insts.OpSub:
			res = a - b
		case insts.OpXor:
			res = a ^ b
		case insts.OpOr:
			res = a | b
		case insts.OpAnd:
			res = a & b
		case insts.OpSll:
			res = a << (b & 0x1F)
		case insts.OpSra:
			res = uint32(int32(a) >> (b & 0x1F))
		case insts.OpSlt:
			res = boolToU32(int32(a) < int32(b))
		case insts.OpMin:
			if int32(a) < int32(b) {
				res = a
			} else {
				res = b
			}
		case insts.OpMax:
			if int32(a) > int32(b) {
				res = a
			} else {
				res = b
			}
		default:
			return CycleResult{}, &RuntimeError{fmt.Errorf("unimplemented R op %s", in.Op)}
		}
		c.Reg.SetI(in.Rd, res)

	case insts.FormatI:
		a := c.Reg.GetI(in.Rs1)
		switch in.Op {
		case insts.OpAddi:
			c.Reg.SetI(in.Rd, a+uint32(in.Imm))
		case insts.OpXori:
			c.Reg.SetI(in.Rd, a^uint32(in.Imm))
		case insts.OpOri:
			c.Reg.SetI(in.Rd, a|uint32(in.Imm))
		case insts.OpAndi:
			c.Reg.SetI(in.Rd, a&uint32(in.Imm))
		case insts.OpSlli:
			c.Reg.SetI(in.Rd, a<<(uint32(in.Imm)&0x1F))
		case insts.OpSlti:
			c.Reg.SetI(in.Rd, boolToU32(int32(a) < in.Imm))
		case insts.OpLw:
			addr := (a + uint32(in.Imm)) >> 2
			memAddr, isMemOp = addr, true
			v, s, err := c.memGetI(addr)
			if err != nil {
				return CycleResult{}, &RuntimeError{err}
			}
			spy = s
			c.Reg.SetI(in.Rd, v)
		case insts.OpJalr:
			c.Reg.SetTyped(in.Rd, register.Usize, nextPC*4)
			nextPC = (a + uint32(in.Imm)) >> 2
		default:
			return CycleResult{}, &RuntimeError{fmt.Errorf("unimplemented I op %s", in.Op)}
		}

	case insts.FormatS:
		base := c.Reg.GetI(in.Rs1)
		val := c.Reg.GetI(in.Rs2)
		addr := (base + uint32(in.Imm)) >> 2
		memAddr, isMemOp = addr, true
		s, err := c.memSetI(addr, val)
		if err != nil {
			return CycleResult{}, &RuntimeError{err}
		}
		spy = s

	case insts.FormatB:
		a, b := int32(c.Reg.GetI(in.Rs1)), int32(c.Reg.GetI(in.Rs2))
		switch in.Op {
		case insts.OpBeq:
			branchTaken = a == b
		case insts.OpBne:
			branchTaken = a != b
		case insts.OpBlt:
			branchTaken = a < b
		case insts.OpBge:
			branchTaken = a >= b
		case insts.OpBxor:
			branchTaken = (a ^ b) != 0
		case insts.OpBxnor:
			branchTaken = (a ^ b) == 0
		}
		if branchTaken {
			nextPC = uint32(int32(nextPC) + in.Imm)
		}

	case insts.FormatP:
		a := int32(c.Reg.GetI(in.Rs1))
		imm2 := in.Imm2
		switch in.Op {
		case insts.OpBeqi:
			branchTaken = a == imm2
		case insts.OpBnei:
			branchTaken = a != imm2
		case insts.OpBlti:
			branchTaken = a < imm2
		case insts.OpBgei:
			branchTaken = a >= imm2
		case insts.OpBgti:
			branchTaken = a > imm2
		case insts.OpBlei:
			branchTaken = a <= imm2
		}
		if branchTaken {
			nextPC = uint32(int32(nextPC) + in.Imm)
		}

	case insts.FormatJ:
		c.Reg.SetTyped(in.Rd, register.Usize, nextPC*4)
		nextPC = uint32(int32(nextPC) + in.Imm)

	case insts.FormatIO:
		switch in.Op {
		case insts.OpOutb:
			c.Output = append(c.Output, byte(c.Reg.GetI(in.Rs1)))
		case insts.OpInw:
			c.Reg.SetI(in.Rd, c.readInput())
		case insts.OpFinw:
			c.Reg.SetF(in.Frd, math.Float32frombits(c.readInput()))
		}

	case insts.FormatF:
		if err := c.execF(in, &nextPC, &memAddr, &isMemOp, &branchTaken); err != nil {
			return CycleResult{}, &RuntimeError{err}
		}

	default:
		return CycleResult{}, &RuntimeError{fmt.Errorf("unimplemented format %s", in.Format)}
	}

	c.pc = nextPC

	if doTrace {
		c.Trace = append(c.Trace, in.String())
	}

	cycles := uint64(1)
	if c.timing != nil {
		isBRAM := isMemOp && c.Mem.IsBRAM(memAddr)
		stat := c.timing.Charge(in, fetchPC, memAddr, isBRAM, branchTaken)
		cycles = stat.TotalCycles
	}

	return CycleResult{Flow: flow, Instr: in, Spy: spy, Cycles: cycles}, nil
}

func (c *CPU) execF(in insts.Instr, nextPC, memAddr *uint32, isMemOp, branchTaken *bool) error {
	f1, f2 := c.Reg.GetF(in.Frs1), c.Reg.GetF(in.Frs2)
	switch in.Op {
	case insts.OpFadd:
		c.Reg.SetF(in.Frd, f1+f2)
	case insts.OpFsub:
		c.Reg.SetF(in.Frd, f1-f2)
	case insts.OpFmul:
		c.Reg.SetF(in.Frd, f1*f2)
	case insts.OpFdiv:
		c.Reg.SetF(in.Frd, f1/f2)
	case insts.OpFsgnj:
		c.Reg.SetF(in.Frd, float32(math.Copysign(float64(f1), float64(f2))))
	case insts.OpFsgnjn:
		c.Reg.SetF(in.Frd, float32(math.Copysign(float64(f1), -float64(f2))))
	case insts.OpFsgnjx:
		sign := float64(1)
		if (f1 < 0) != (f2 < 0) {
			sign = -1
		}
		c.Reg.SetF(in.Frd, float32(math.Copysign(float64(f1), sign)))
	case insts.OpFmadd:
		f3 := c.Reg.GetF(in.Frs3)
		c.Reg.SetF(in.Frd, f1*f2+f3)
	case insts.OpFmsub:
		f3 := c.Reg.GetF(in.Frs3)
		c.Reg.SetF(in.Frd, f1*f2-f3)
	case insts.OpFnmadd:
		f3 := c.Reg.GetF(in.Frs3)
		c.Reg.SetF(in.Frd, -(f1*f2)-f3)
	case insts.OpFnmsub:
		f3 := c.Reg.GetF(in.Frs3)
		c.Reg.SetF(in.Frd, -(f1*f2)+f3)
	case insts.OpFsqrt:
		c.Reg.SetF(in.Frd, float32(math.Sqrt(float64(f1))))
	case insts.OpFhalf:
		c.Reg.SetF(in.Frd, f1*0.5)
	case insts.OpFfloor:
		c.Reg.SetF(in.Frd, float32(math.Floor(float64(f1))))
	case insts.OpFfrac:
		c.Reg.SetF(in.Frd, f1-float32(math.Floor(float64(f1))))
	case insts.OpFinv:
		c.Reg.SetF(in.Frd, 1/f1)
	case insts.OpFlt:
		c.Reg.SetI(in.Rd, boolToU32(f1 < f2))
	case insts.OpFitof:
		c.Reg.SetF(in.Frd, float32(int32(c.Reg.GetI(in.Rs1))))
	case insts.OpFftoi:
		c.Reg.SetI(in.Rd, uint32(int32(f1)))
	case insts.OpFiszero:
		c.Reg.SetI(in.Rd, boolToU32(f1 == 0))
	case insts.OpFispos:
		c.Reg.SetI(in.Rd, boolToU32(f1 > 0))
	case insts.OpFisneg:
		c.Reg.SetI(in.Rd, boolToU32(f1 < 0))
	case insts.OpFlw:
		addr := (c.Reg.GetI(in.Rs1) + uint32(in.Imm)) >> 2
		*memAddr, *isMemOp = addr, true
		v, _, err := c.memGetF(addr)
		if err != nil {
			return err
		}
		c.Reg.SetF(in.Frd, math.Float32frombits(v))
	case insts.OpFsw:
		addr := (c.Reg.GetI(in.Rs1) + uint32(in.Imm)) >> 2
		*memAddr, *isMemOp = addr, true
		_, err := c.memSetF(addr, math.Float32bits(c.Reg.GetF(in.Frs2)))
		return err
	case insts.OpFblt, insts.OpFbge, insts.OpFbeqz, insts.OpFbnez:
		c.execFBranch(in, nextPC, branchTaken)
	default:
		return fmt.Errorf("unimplemented F op %s", in.Op)
	}
	return nil
}

func (c *CPU) execFBranch(in insts.Instr, nextPC *uint32, branchTaken *bool) {
	f1 := c.Reg.GetF(in.Frs1)
	taken := false
	switch in.Op {
	case insts.OpFblt:
		taken = f1 < c.Reg.GetF(in.Frs2)
	case insts.OpFbge:
		taken = f1 >= c.Reg.GetF(in.Frs2)
	case insts.OpFbeqz:
		taken = f1 == 0
	case insts.OpFbnez:
		taken = f1 != 0
	}
	*branchTaken = taken
	if taken {
		*nextPC = uint32(int32(*nextPC) + in.Imm)
	}
}

func (c *CPU) memGetI(addr uint32) (uint32, *SpyResult, error) {
	if !c.typedMemory {
		return c.Mem.Get(addr)
	}
	return c.Mem.GetI(addr)
}

func (c *CPU) memGetF(addr uint32) (uint32, *SpyResult, error) {
	if !c.typedMemory {
		return c.Mem.Get(addr)
	}
	return c.Mem.GetF(addr)
}

func (c *CPU) memSetI(addr, v uint32) (*SpyResult, error) {
	if !c.typedMemory {
		return c.Mem.Set(addr, v)
	}
	return c.Mem.Set(addr, v)
}

func (c *CPU) memSetF(addr, v uint32) (*SpyResult, error) {
	return c.Mem.SetF(addr, v)
}

func (c *CPU) readInput() uint32 {
	if c.inPos+4 > len(c.Input) {
		return 0
	}
	v := uint32(c.Input[c.inPos]) | uint32(c.Input[c.inPos+1])<<8 |
		uint32(c.Input[c.inPos+2])<<16 | uint32(c.Input[c.inPos+3])<<24
	c.inPos += 4
	return v
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
