package insts

import "github.com/sarchlab/m2sim/register"

// decodeV1 implements the RISC-V-like dialect (spec §4.1, §6.3), bit-field
// positions and funct7/funct3 subtables grounded on the original's
// decode_instr.rs.
func decodeV1(word uint32) (Instr, error) {
	if word == 0 {
		return Instr{Format: FormatMisc, Op: OpEnd, Raw: word}, nil
	}

	opcode := extract(word, 0, 6)
	rd := register.Id(extract(word, 7, 11))
	funct3 := extract(word, 12, 14)
	rs1 := register.Id(extract(word, 15, 19))
	rs2 := extract(word, 20, 24)
	funct7 := extract(word, 25, 31)
	sign := at(word, 31)

	switch opcode {
	case 0b0110011: // R
		var op Op
		switch {
		case funct3 == 0x0 && funct7 == 0x00:
			op = OpAdd
		case funct3 == 0x0 && funct7 == 0x20:
			op = OpSub
		case funct3 == 0x4 && funct7 == 0x00:
			op = OpXor
		case funct3 == 0x6 && funct7 == 0x00:
			op = OpOr
		case funct3 == 0x7 && funct7 == 0x00:
			op = OpAnd
		case funct3 == 0x1 && funct7 == 0x00:
			op = OpSll
		case funct3 == 0x5 && funct7 == 0x20:
			op = OpSra
		case funct3 == 0x2 && funct7 == 0x00:
			op = OpSlt
		default:
			return Instr{}, &DecodeError{word}
		}
		return Instr{Format: FormatR, Op: op, Rd: rd, Rs1: rs1, Rs2: register.Id(rs2), Raw: word}, nil

	case 0b0010011: // I (ALU-immediate)
		imm := extract(word, 20, 31)
		var op Op
		switch {
		case funct3 == 0x0:
			op = OpAddi
		case funct3 == 0x4:
			op = OpXori
		case funct3 == 0x6:
			op = OpOri
		case funct3 == 0x7:
			op = OpAndi
		case funct3 == 0x1 && funct7 == 0x00:
			op = OpSlli
			imm &= 0x1F
		case funct3 == 0x2:
			op = OpSlti
		default:
			return Instr{}, &DecodeError{word}
		}
		return Instr{Format: FormatI, Op: op, Rd: rd, Rs1: rs1, Imm: signExtend(sign, imm, 12), Raw: word}, nil

	case 0b0000011: // lw
		if funct3 != 0x2 {
			return Instr{}, &DecodeError{word}
		}
		imm := extract(word, 20, 31)
		return Instr{Format: FormatI, Op: OpLw, Rd: rd, Rs1: rs1, Imm: signExtend(sign, imm, 12), Raw: word}, nil

	case 0b1100111: // jalr
		if funct3 != 0x0 {
			return Instr{}, &DecodeError{word}
		}
		imm := extract(word, 20, 31)
		return Instr{Format: FormatI, Op: OpJalr, Rd: rd, Rs1: rs1, Imm: signExtend(sign, imm, 12), Raw: word}, nil

	case 0b0100011: // sw
		if funct3 != 0x2 {
			return Instr{}, &DecodeError{word}
		}
		imm := (extract(word, 25, 31) << 5) | extract(word, 7, 11)
		return Instr{Format: FormatS, Op: OpSw, Rs1: rs1, Rs2: register.Id(rs2), Imm: signExtend(sign, imm, 12), Raw: word}, nil

	case 0b1100011: // B
		imm := bImm(word, sign)
		var op Op
		switch funct3 {
		case 0x0:
			op = OpBeq
		case 0x1:
			op = OpBne
		case 0x4:
			op = OpBlt
		case 0x5:
			op = OpBge
		default:
			return Instr{}, &DecodeError{word}
		}
		return Instr{Format: FormatB, Op: op, Rs1: rs1, Rs2: register.Id(rs2), Imm: imm, Raw: word}, nil

	case 0b1101111: // jal
		imm := jImm(word, sign)
		return Instr{Format: FormatJ, Op: OpJal, Rd: rd, Imm: imm, Raw: word}, nil

	case 0b0001011: // inw
		return Instr{Format: FormatIO, Op: OpInw, Rd: rd, Raw: word}, nil
	case 0b0101011: // outb
		return Instr{Format: FormatIO, Op: OpOutb, Rs1: rs1, Raw: word}, nil
	case 0b0001111: // finw
		return Instr{Format: FormatIO, Op: OpFinw, Frd: register.FId(rd), Raw: word}, nil

	case 0b1010011: // E/H/X/Y/K
		return decodeV1Fp(word, rd, funct3, rs1, rs2, funct7)

	case 0b1010111: // W/V
		return decodeV1FpBranch(word, funct3, rs1, rs2, rd, sign)

	case 0b0000111: // flw
		imm := extract(word, 20, 31)
		return Instr{Format: FormatF, Op: OpFlw, Frd: register.FId(rd), Rs1: rs1, Imm: signExtend(sign, imm, 12), Raw: word}, nil

	case 0b0100111: // fsw
		imm := (extract(word, 25, 31) << 5) | extract(word, 7, 11)
		return Instr{Format: FormatF, Op: OpFsw, Rs1: rs1, Frs2: register.FId(rs2), Imm: signExtend(sign, imm, 12), Raw: word}, nil

	default:
		return Instr{}, &DecodeError{word}
	}
}

func decodeV1Fp(word uint32, rd register.Id, funct3 uint32, rs1 register.Id, rs2, funct7 uint32) (Instr, error) {
	frd, frs1, frs2 := register.FId(rd), register.FId(rs1), register.FId(rs2)
	if funct3 == 0 {
		switch funct7 {
		case 0b0000, 0b0100, 0b1000, 0b1100, 0b011000, 0b011100, 0b100000:
			var op Op
			switch funct7 {
			case 0b0000:
				op = OpFadd
			case 0b0100:
				op = OpFsub
			case 0b1000:
				op = OpFmul
			case 0b1100:
				op = OpFdiv
			case 0b011000:
				op = OpFsgnj
			case 0b011100:
				op = OpFsgnjn
			case 0b100000:
				op = OpFsgnjx
			}
			return Instr{Format: FormatF, Op: op, Frd: frd, Frs1: frs1, Frs2: frs2, Raw: word}, nil
		case 0b10000, 0b10100, 0b1000000:
			var op Op
			switch funct7 {
			case 0b10000:
				op = OpFsqrt
			case 0b10100:
				op = OpFhalf
			case 0b1000000:
				op = OpFfloor
			}
			return Instr{Format: FormatF, Op: op, Frd: frd, Frs1: frs1, Raw: word}, nil
		case 0b1000101:
			return Instr{Format: FormatF, Op: OpFftoi, Rd: rd, Frs1: frs1, Raw: word}, nil
		case 0b0100110:
			return Instr{Format: FormatF, Op: OpFitof, Frd: frd, Rs1: rs1, Raw: word}, nil
		default:
			return Instr{}, &DecodeError{word}
		}
	}
	if funct7 != 0b1010001 {
		return Instr{}, &DecodeError{word}
	}
	if funct3&0b100 == 0 {
		if funct3 != 0b001 {
			return Instr{}, &DecodeError{word}
		}
		return Instr{Format: FormatF, Op: OpFlt, Rd: rd, Frs1: frs1, Frs2: frs2, Raw: word}, nil
	}
	var op Op
	switch funct3 {
	case 0b100:
		op = OpFiszero
	case 0b101:
		op = OpFispos
	case 0b110:
		op = OpFisneg
	default:
		return Instr{}, &DecodeError{word}
	}
	return Instr{Format: FormatF, Op: op, Rd: rd, Frs1: frs1, Raw: word}, nil
}

func decodeV1FpBranch(word uint32, funct3 uint32, rs1 register.Id, rs2 uint32, rd register.Id, sign uint32) (Instr, error) {
	frs1, frs2 := register.FId(rs1), register.FId(rs2)
	imm := bImm(word, sign)
	if funct3&0b100 == 0 {
		var op Op
		switch funct3 {
		case 0b001:
			op = OpFblt
		case 0b010:
			op = OpFbge
		default:
			return Instr{}, &DecodeError{word}
		}
		return Instr{Format: FormatF, Op: op, Frs1: frs1, Frs2: frs2, Imm: imm, Raw: word}, nil
	}
	var op Op
	switch funct3 {
	case 0b100:
		op = OpFbeqz
	case 0b111:
		op = OpFbnez
	default:
		return Instr{}, &DecodeError{word}
	}
	return Instr{Format: FormatF, Op: op, Frs1: frs1, Imm: imm, Raw: word}, nil
}

func jImm(word, sign uint32) int32 {
	part1 := extract(word, 12, 19)
	part2 := at(word, 20)
	part3 := extract(word, 21, 30)
	imm := part1<<12 | part2<<11 | part3<<1 | sign<<20
	return signExtend(sign, imm, 21)
}

func bImm(word, sign uint32) int32 {
	at7 := at(word, 7)
	lower := extract(word, 8, 11)
	upper := extract(word, 25, 30)
	imm := lower<<1 | upper<<5 | at7<<11 | sign<<12
	return signExtend(sign, imm, 13)
}
