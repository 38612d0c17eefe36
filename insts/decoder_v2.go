package insts

import "github.com/sarchlab/m2sim/register"

// decodeV2 implements the packed dialect (spec §4.1), grounded on the
// original's decode_instr_2nd.rs compose_3/4/6 immediate-reassembly
// procedures.
func decodeV2(word uint32) (Instr, error) {
	if word == 1<<31 {
		return Instr{Format: FormatMisc, Op: OpEnd, Raw: word}, nil
	}

	opcode := extract(word, 0, 3)
	rd := register.Id(extract(word, 4, 9))
	funct3 := extract(word, 10, 12)
	rs1 := register.Id(extract(word, 13, 18))
	rs2 := extract(word, 19, 24)
	funct7 := extract(word, 25, 31)
	imm116 := extract(word, 25, 30)
	sign := at(word, 31)

	switch opcode {
	case 0b0000: // R
		var op Op
		switch funct3 {
		case 0x0:
			op = OpAdd
		case 0x4:
			op = OpXor
		case 0x1:
			op = OpMin
		case 0x3:
			op = OpMax
		default:
			return Instr{}, &DecodeError{word}
		}
		return Instr{Format: FormatR, Op: op, Rd: rd, Rs1: rs1, Rs2: register.Id(rs2), Raw: word}, nil

	case 0b0010: // I
		var op Op
		switch funct3 {
		case 0x0:
			op = OpAddi
		case 0x4:
			op = OpXori
		case 0x2:
			op = OpSlli
		default:
			return Instr{}, &DecodeError{word}
		}
		imm := compose3(sign, imm116, rs2)
		return Instr{Format: FormatI, Op: op, Rd: rd, Rs1: rs1, Imm: imm, Raw: word}, nil

	case 0b0110: // lw
		imm := compose3(sign, imm116, rs2)
		return Instr{Format: FormatI, Op: OpLw, Rd: rd, Rs1: rs1, Imm: imm, Raw: word}, nil

	case 0b1010: // jalr
		if funct3 != 0x0 {
			return Instr{}, &DecodeError{word}
		}
		imm := compose3(sign, imm116, rs2)
		return Instr{Format: FormatI, Op: OpJalr, Rd: rd, Rs1: rs1, Imm: imm, Raw: word}, nil

	case 0b0100: // sw
		imm := compose3(sign, imm116, uint32(rd))
		return Instr{Format: FormatS, Op: OpSw, Rs1: rs1, Rs2: register.Id(rs2), Imm: imm, Raw: word}, nil

	case 0b1000: // B
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
		case 0x2:
			op = OpBxor
		case 0x3:
			op = OpBxnor
		default:
			return Instr{}, &DecodeError{word}
		}
		imm := compose4(sign, imm116, uint32(rd))
		return Instr{Format: FormatB, Op: op, Rs1: rs1, Rs2: register.Id(rs2), Imm: imm, Raw: word}, nil

	case 0b1100: // P
		var op Op
		switch funct3 {
		case 0x0:
			op = OpBeqi
		case 0x1:
			op = OpBnei
		case 0x4:
			op = OpBlti
		case 0x5:
			op = OpBgei
		case 0x6:
			op = OpBgti
		case 0x7:
			op = OpBlei
		default:
			return Instr{}, &DecodeError{word}
		}
		imm2 := signExtend(at(rs2, 5), rs2, 5)
		imm := compose4(sign, imm116, uint32(rd))
		return Instr{Format: FormatP, Op: op, Rs1: rs1, Imm: imm, Imm2: imm2, Raw: word}, nil

	case 0b1110: // jal
		imm := compose6(sign, imm116, rs2, uint32(rs1), funct3)
		return Instr{Format: FormatJ, Op: OpJal, Rd: rd, Imm: imm, Raw: word}, nil

	case 0b0011: // IO
		switch funct3 {
		case 0b001:
			return Instr{Format: FormatIO, Op: OpInw, Rd: rd, Raw: word}, nil
		case 0b010:
			return Instr{Format: FormatIO, Op: OpOutb, Rs1: rs1, Raw: word}, nil
		case 0b100:
			return Instr{Format: FormatIO, Op: OpFinw, Frd: register.FId(rd), Raw: word}, nil
		default:
			return Instr{}, &DecodeError{word}
		}

	case 0b0001: // F (E/H/X/Y/G/K)
		return decodeV2Fp(word, rd, funct3, rs1, rs2, funct7, imm116, sign)

	case 0b1001: // W/V
		return decodeV2FpBranch(word, funct3, rs1, rs2, rd, sign, imm116)

	case 0b0111: // flw
		imm := compose3(sign, imm116, rs2)
		return Instr{Format: FormatF, Op: OpFlw, Frd: register.FId(rd), Rs1: rs1, Imm: imm, Raw: word}, nil

	case 0b0101: // fsw
		imm := compose3(sign, imm116, uint32(rd))
		return Instr{Format: FormatF, Op: OpFsw, Rs1: rs1, Frs2: register.FId(rs2), Imm: imm, Raw: word}, nil

	default:
		return Instr{}, &DecodeError{word}
	}
}

func decodeV2Fp(word uint32, rd register.Id, funct3 uint32, rs1 register.Id, rs2, funct7, imm116, sign uint32) (Instr, error) {
	frd, frs1, frs2 := register.FId(rd), register.FId(rs1), register.FId(rs2)
	if funct3 == 0 {
		funct5 := funct7 >> 2
		switch funct5 {
		case 0b00, 0b01, 0b10, 0b11, 0b110, 0b111, 0b1000:
			var op Op
			switch funct5 {
			case 0b0000:
				op = OpFadd
			case 0b0001:
				op = OpFsub
			case 0b0010:
				op = OpFmul
			case 0b0011:
				op = OpFdiv
			case 0b0110:
				op = OpFsgnj
			case 0b0111:
				op = OpFsgnjn
			case 0b1000:
				op = OpFsgnjx
			default:
				return Instr{}, &DecodeError{word}
			}
			return Instr{Format: FormatF, Op: op, Frd: frd, Frs1: frs1, Frs2: frs2, Raw: word}, nil
		case 0b100, 0b101, 0b1100, 0b1011, 0b01001:
			var op Op
			switch funct5 {
			case 0b00100:
				op = OpFsqrt
			case 0b00101:
				op = OpFhalf
			case 0b01100:
				op = OpFfrac
			case 0b01011:
				op = OpFinv
			case 0b01001:
				op = OpFfloor
			default:
				return Instr{}, &DecodeError{word}
			}
			return Instr{Format: FormatF, Op: op, Frd: frd, Frs1: frs1, Raw: word}, nil
		case 0b10001:
			return Instr{Format: FormatF, Op: OpFftoi, Rd: rd, Frs1: frs1, Raw: word}, nil
		case 0b11001:
			return Instr{Format: FormatF, Op: OpFitof, Frd: frd, Rs1: rs1, Raw: word}, nil
		default:
			return Instr{}, &DecodeError{word}
		}
	}
	if sign == 0 {
		rs3 := register.FId(imm116)
		var op Op
		switch funct3 {
		case 0b001:
			op = OpFmadd
		case 0b010:
			op = OpFmsub
		case 0b101:
			op = OpFnmadd
		case 0b110:
			op = OpFnmsub
		default:
			return Instr{}, &DecodeError{word}
		}
		return Instr{Format: FormatF, Op: op, Frd: frd, Frs1: frs1, Frs2: frs2, Frs3: rs3, Raw: word}, nil
	}
	if funct3 == 0b001 {
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

func decodeV2FpBranch(word uint32, funct3 uint32, rs1 register.Id, rs2 uint32, rd register.Id, sign uint32, imm116 uint32) (Instr, error) {
	frs1, frs2 := register.FId(rs1), register.FId(rs2)
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
		imm := compose4(sign, imm116, uint32(rd))
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
	imm := compose4(sign, imm116, uint32(rd))
	return Instr{Format: FormatF, Op: op, Frs1: frs1, Imm: imm, Raw: word}, nil
}

func compose3(sign, imm116, imm50 uint32) int32 {
	imm := imm116<<6 | imm50
	return signExtend(sign, imm, 12)
}

func compose4(sign, imm116, imm5213_12 uint32) int32 {
	imm1312 := imm5213_12 & 0x1
	imm := imm1312<<12 | imm116<<6 | ((imm5213_12 >> 2) & 0x7)
	return signExtend(sign, imm, 14)
}

func compose6(sign, imm116, imm5213_12, imm2217, imm1614 uint32) int32 {
	imm1312 := imm5213_12 & 0x1
	imm := imm2217<<17 | imm1614<<14 | imm1312<<12 | imm116<<6 | ((imm5213_12 >> 2) & 0x7)
	return signExtend(sign, imm, 23)
}
