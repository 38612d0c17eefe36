package insts

import "fmt"

// Dialect selects one of the two instruction-word encodings (spec §4.1).
// Kept as a runtime value rather than a Go build tag: a single test binary
// then exercises both dialects side by side (spec §9's "optional features
// as compile-time dimensions" note explicitly allows either materialization).
type Dialect uint8

const (
	DialectV1 Dialect = iota
	DialectV2
)

// DecodeError reports an unknown opcode/funct combination (spec §7).
type DecodeError struct {
	Word uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid opcode found: %#010x", e.Word)
}

// Decoder decodes instruction words under a fixed dialect. Decoding is pure:
// identical input always yields identical output (spec §4.1 invariant).
type Decoder struct {
	dialect Dialect
}

// New returns a Decoder fixed to the given dialect.
func New(dialect Dialect) *Decoder {
	return &Decoder{dialect: dialect}
}

// Dialect reports which dialect this decoder was constructed with.
func (d *Decoder) Dialect() Dialect { return d.dialect }

// Decode decodes a single 32-bit instruction word.
func (d *Decoder) Decode(word uint32) (Instr, error) {
	switch d.dialect {
	case DialectV2:
		return decodeV2(word)
	default:
		return decodeV1(word)
	}
}
