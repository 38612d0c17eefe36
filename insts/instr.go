// Package insts models the instruction word: a single tagged-union
// Instruction type covering every syntactic format the CPU executes, plus
// the stable InstrId identifier used for per-opcode statistics.
package insts

import (
	"fmt"

	"github.com/sarchlab/m2sim/register"
)

// Format names the syntactic shape of a decoded instruction (spec §3).
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatP // v2-only compare-immediate branch
	FormatJ
	FormatIO
	FormatF // float ops: E/G/H/K/X/Y/W/V plus Flw/Fsw
	FormatMisc
)

func (f Format) String() string {
	names := [...]string{"R", "I", "S", "B", "P", "J", "IO", "F", "Misc"}
	if int(f) < len(names) {
		return names[f]
	}
	return "?"
}

// Op names the concrete operation within a format. The same enum spans both
// decoder dialects; a dialect simply never produces the ops it lacks.
type Op uint16

const (
	OpInvalid Op = iota

	// R format (integer ALU).
	OpAdd
	OpSub
	OpXor
	OpOr
	OpAnd
	OpSll
	OpSra
	OpSlt
	OpMin
	OpMax

	// I format.
	OpAddi
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSlti
	OpLw
	OpJalr

	// S format.
	OpSw

	// B format.
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBxor
	OpBxnor

	// P format (v2 compare-immediate branch).
	OpBeqi
	OpBnei
	OpBlti
	OpBgei
	OpBgti
	OpBlei

	// J format.
	OpJal

	// IO format.
	OpOutb
	OpInw
	OpFinw

	// F/E - basic float arithmetic.
	OpFadd
	OpFsub
	OpFmul
	OpFdiv
	OpFsgnj
	OpFsgnjn
	OpFsgnjx

	// F/G - v2 fused multiply-add.
	OpFmadd
	OpFmsub
	OpFnmadd
	OpFnmsub

	// F/H - float sieve.
	OpFsqrt
	OpFhalf
	OpFfloor
	OpFfrac
	OpFinv

	// F/K - float compare.
	OpFlt

	// F/X - int to float.
	OpFitof

	// F/Y - float to int, predicates.
	OpFftoi
	OpFiszero
	OpFispos
	OpFisneg

	// F/W - float branches.
	OpFblt
	OpFbge

	// F/V - float branch-on-zero.
	OpFbeqz
	OpFbnez

	// F - flw/fsw.
	OpFlw
	OpFsw

	// Misc.
	OpEnd
)

var opNames = map[Op]string{
	OpAdd: "add", OpSub: "sub", OpXor: "xor", OpOr: "or", OpAnd: "and",
	OpSll: "sll", OpSra: "sra", OpSlt: "slt", OpMin: "min", OpMax: "max",
	OpAddi: "addi", OpXori: "xori", OpOri: "ori", OpAndi: "andi",
	OpSlli: "slli", OpSlti: "slti", OpLw: "lw", OpJalr: "jalr",
	OpSw: "sw",
	OpBeq: "beq", OpBne: "bne", OpBlt: "blt", OpBge: "bge",
	OpBxor: "bxor", OpBxnor: "bxnor",
	OpBeqi: "beqi", OpBnei: "bnei", OpBlti: "blti", OpBgei: "bgei",
	OpBgti: "bgti", OpBlei: "blei",
	OpJal:  "jal",
	OpOutb: "outb", OpInw: "inw", OpFinw: "finw",
	OpFadd: "fadd", OpFsub: "fsub", OpFmul: "fmul", OpFdiv: "fdiv",
	OpFsgnj: "fsgnj", OpFsgnjn: "fsgnjn", OpFsgnjx: "fsgnjx",
	OpFmadd: "fmadd", OpFmsub: "fmsub", OpFnmadd: "fnmadd", OpFnmsub: "fnmsub",
	OpFsqrt: "fsqrt", OpFhalf: "fhalf", OpFfloor: "ffloor", OpFfrac: "ffrac",
	OpFinv: "finv",
	OpFlt:  "flt",
	OpFitof: "fitof",
	OpFftoi: "fftoi", OpFiszero: "fiszero", OpFispos: "fispos", OpFisneg: "fisneg",
	OpFblt: "fblt", OpFbge: "fbge",
	OpFbeqz: "fbeqz", OpFbnez: "fbnez",
	OpFlw: "flw", OpFsw: "fsw",
	OpEnd: "end",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "invalid"
}

// Instr is the decoded instruction: a flat struct carrying every field any
// format might need, tagged by Format/Op (the teacher's Instruction-struct
// idiom, generalized from ARM64 fields to this ISA's formats).
type Instr struct {
	Format Format
	Op     Op

	Rd, Rs1, Rs2 register.Id
	Frd, Frs1, Frs2, Frs3 register.FId

	// Imm holds the format's immediate, pre-sign-extended to int32. For
	// FormatP, Imm is the branch displacement and Imm2 is the 6-bit signed
	// compare-immediate substituted for rs2 (spec §4.4.1).
	Imm  int32
	Imm2 int32

	// Raw is the original 32-bit word, kept for trace/disassembly output.
	Raw uint32
}

// InstrId is the stable numeric identifier used for statistics arrays
// (spec §9): category in the upper nibble (<=15), variant in the lower 3
// bits (<=7), except category 15 (Misc) which admits exactly three
// variants: flw=0, fsw=1, end=2, even though flw/fsw are structurally F
// instructions.
type InstrId struct {
	Category uint8
	Variant  uint8
}

func (id InstrId) pack() uint8 { return id.Category<<4 | id.Variant }

func (id InstrId) String() string {
	return fmt.Sprintf("%d.%d", id.Category, id.Variant)
}

const (
	catR = iota
	catI
	catS
	catB
	catP
	catJ
	catIO
	catE
	catG
	catH
	catK
	catX
	catY
	catW
	catV
	catMisc
)

var rVariant = map[Op]uint8{OpAdd: 0, OpSub: 1, OpXor: 2, OpOr: 3, OpAnd: 4, OpSll: 5, OpSra: 6, OpSlt: 7}
var rVariantV2 = map[Op]uint8{OpAdd: 0, OpXor: 1, OpMin: 2, OpMax: 3}
var iVariant = map[Op]uint8{OpAddi: 0, OpXori: 1, OpOri: 2, OpAndi: 3, OpSlli: 4, OpSlti: 5, OpLw: 6, OpJalr: 7}
var bVariant = map[Op]uint8{OpBeq: 0, OpBne: 1, OpBlt: 2, OpBge: 3, OpBxor: 4, OpBxnor: 5}
var pVariant = map[Op]uint8{OpBeqi: 0, OpBnei: 1, OpBlti: 2, OpBgei: 3, OpBgti: 4, OpBlei: 5}
var ioVariant = map[Op]uint8{OpInw: 0, OpOutb: 1, OpFinw: 2}
var eVariant = map[Op]uint8{OpFadd: 0, OpFsub: 1, OpFmul: 2, OpFdiv: 3, OpFsgnj: 4, OpFsgnjn: 5, OpFsgnjx: 6}
var gVariant = map[Op]uint8{OpFmadd: 0, OpFmsub: 1, OpFnmadd: 2, OpFnmsub: 3}
var hVariant = map[Op]uint8{OpFsqrt: 0, OpFhalf: 1, OpFfloor: 2, OpFfrac: 3, OpFinv: 4}
var kVariant = map[Op]uint8{OpFlt: 0}
var xVariant = map[Op]uint8{OpFitof: 0}
var yVariant = map[Op]uint8{OpFftoi: 0, OpFiszero: 1, OpFispos: 2, OpFisneg: 3}
var wVariant = map[Op]uint8{OpFblt: 0, OpFbge: 1}
var vVariant = map[Op]uint8{OpFbeqz: 0, OpFbnez: 1}

// ID returns the stable InstrId for an instruction, per the InstrId
// contract in spec §9.
func (in Instr) ID() InstrId {
	switch in.Format {
	case FormatR:
		if v, ok := rVariant[in.Op]; ok {
			return InstrId{catR, v}
		}
		return InstrId{catR, rVariantV2[in.Op]}
	case FormatI:
		return InstrId{catI, iVariant[in.Op]}
	case FormatS:
		return InstrId{catS, 0}
	case FormatB:
		return InstrId{catB, bVariant[in.Op]}
	case FormatP:
		return InstrId{catP, pVariant[in.Op]}
	case FormatJ:
		return InstrId{catJ, 0}
	case FormatIO:
		return InstrId{catIO, ioVariant[in.Op]}
	case FormatF:
		switch in.Op {
		case OpFlw:
			return InstrId{catMisc, 0}
		case OpFsw:
			return InstrId{catMisc, 1}
		}
		if v, ok := eVariant[in.Op]; ok {
			return InstrId{catE, v}
		}
		if v, ok := gVariant[in.Op]; ok {
			return InstrId{catG, v}
		}
		if v, ok := hVariant[in.Op]; ok {
			return InstrId{catH, v}
		}
		if v, ok := kVariant[in.Op]; ok {
			return InstrId{catK, v}
		}
		if v, ok := xVariant[in.Op]; ok {
			return InstrId{catX, v}
		}
		if v, ok := yVariant[in.Op]; ok {
			return InstrId{catY, v}
		}
		if v, ok := wVariant[in.Op]; ok {
			return InstrId{catW, v}
		}
		return InstrId{catV, vVariant[in.Op]}
	case FormatMisc:
		return InstrId{catMisc, 2}
	default:
		return InstrId{catMisc, 2}
	}
}

// String renders the instruction in assembly syntax, used both for
// trace lines (spec §6.4) and disassembly (spec §4.7.1).
func (in Instr) String() string {
	switch in.Format {
	case FormatR:
		return fmt.Sprintf("%s %s, %s, %s", in.Op, in.Rd, in.Rs1, in.Rs2)
	case FormatI:
		if in.Op == OpLw {
			return fmt.Sprintf("lw %s, %d(%s)", in.Rd, in.Imm, in.Rs1)
		}
		if in.Op == OpJalr {
			return fmt.Sprintf("jalr %s, %d(%s)", in.Rd, in.Imm, in.Rs1)
		}
		if in.Op == OpAddi && in.Rs1.IsZero() {
			if in.Imm == 0 {
				if in.Rd.IsZero() {
					return "nop"
				}
				return fmt.Sprintf("mv %s, %s", in.Rd, in.Rs1)
			}
			return fmt.Sprintf("li %s, %d", in.Rd, in.Imm)
		}
		if in.Op == OpAddi && in.Imm < 0 {
			return fmt.Sprintf("subi %s, %s, %d", in.Rd, in.Rs1, -in.Imm)
		}
		if in.Op == OpXori && in.Imm == 1 {
			return fmt.Sprintf("not %s, %s", in.Rd, in.Rs1)
		}
		return fmt.Sprintf("%s %s, %s, %d", in.Op, in.Rd, in.Rs1, in.Imm)
	case FormatS:
		return fmt.Sprintf("sw %s, %d(%s)", in.Rs2, in.Imm, in.Rs1)
	case FormatB:
		return fmt.Sprintf("%s %s, %s, %d", in.Op, in.Rs1, in.Rs2, in.Imm)
	case FormatP:
		return fmt.Sprintf("%s %s, %d, %d", in.Op, in.Rs1, in.Imm2, in.Imm)
	case FormatJ:
		return fmt.Sprintf("jal %s, %d", in.Rd, in.Imm)
	case FormatIO:
		switch in.Op {
		case OpOutb:
			return fmt.Sprintf("outb %s", in.Rs1)
		case OpInw:
			return fmt.Sprintf("inw %s", in.Rd)
		default:
			return fmt.Sprintf("finw %s", in.Frd)
		}
	case FormatF:
		switch in.Op {
		case OpFlw:
			return fmt.Sprintf("flw %s, %d(%s)", in.Frd, in.Imm, in.Rs1)
		case OpFsw:
			return fmt.Sprintf("fsw %s, %d(%s)", in.Frs2, in.Imm, in.Rs1)
		case OpFmadd, OpFmsub, OpFnmadd, OpFnmsub:
			return fmt.Sprintf("%s %s, %s, %s, %s", in.Op, in.Frd, in.Frs1, in.Frs2, in.Frs3)
		case OpFsqrt, OpFhalf, OpFfloor, OpFfrac, OpFinv:
			return fmt.Sprintf("%s %s, %s", in.Op, in.Frd, in.Frs1)
		case OpFlt:
			return fmt.Sprintf("flt %s, %s, %s", in.Rd, in.Frs1, in.Frs2)
		case OpFitof:
			return fmt.Sprintf("fitof %s, %s", in.Frd, in.Rs1)
		case OpFftoi:
			return fmt.Sprintf("fftoi %s, %s", in.Rd, in.Frs1)
		case OpFiszero, OpFispos, OpFisneg:
			return fmt.Sprintf("%s %s, %s", in.Op, in.Rd, in.Frs1)
		case OpFblt, OpFbge:
			return fmt.Sprintf("%s %s, %s, %d", in.Op, in.Frs1, in.Frs2, in.Imm)
		case OpFbeqz, OpFbnez:
			return fmt.Sprintf("%s %s, %d", in.Op, in.Frs1, in.Imm)
		default:
			return fmt.Sprintf("%s %s, %s, %s", in.Op, in.Frd, in.Frs1, in.Frs2)
		}
	default:
		return "end"
	}
}
