// Package loader reads the simulator's custom binary image format (spec
// §6.1), replacing the teacher's ELF loader: a 4-byte little-endian
// data_len, a 4-byte little-endian text_len, then data_len data words,
// then text_len instruction words.
package loader

import (
	"encoding/binary"
	"fmt"
)

// Program is the loaded image: the instruction stream and initial data
// segment, ready to hand to emu.NewMemory/LoadText/LoadData.
type Program struct {
	Text []uint32
	Data []uint32
}

// ErrTruncated reports an image shorter than its own header declares.
type ErrTruncated struct {
	Wanted, Got int
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("truncated image: wanted %d bytes, got %d", e.Wanted, e.Got)
}

// Load parses a binary image per spec §6.1.
func Load(raw []byte) (*Program, error) {
	if len(raw) < 8 {
		return nil, &ErrTruncated{8, len(raw)}
	}
	dataLen := binary.LittleEndian.Uint32(raw[0:4])
	textLen := binary.LittleEndian.Uint32(raw[4:8])

	want := 8 + int(dataLen)*4 + int(textLen)*4
	if len(raw) < want {
		return nil, &ErrTruncated{want, len(raw)}
	}

	data := make([]uint32, dataLen)
	off := 8
	for i := range data {
		data[i] = binary.LittleEndian.Uint32(raw[off : off+4])
		off += 4
	}

	text := make([]uint32, textLen)
	for i := range text {
		text[i] = binary.LittleEndian.Uint32(raw[off : off+4])
		off += 4
	}

	return &Program{Text: text, Data: data}, nil
}
