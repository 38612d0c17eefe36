package emu

import (
	"fmt"

	"github.com/sarchlab/m2sim/register"
)

// RAMByteSize is the total addressable byte span (spec §4.3), matching the
// original's 1,000,000-byte RAM.
const RAMByteSize = 1_000_000

// RAMWords is RAMByteSize expressed in 4-byte words.
const RAMWords = RAMByteSize / 4

// bramHeadWords/bramGuardWords bound the BRAM range: word addresses
// [0, bramHeadWords) and [RAMWords-bramGuardWords, RAMWords) are backed by
// block RAM and bypass the cache/DDR2 model entirely (spec §4.4.2/§4.6).
const bramHeadWords = 16384
const bramGuardWords = 256

// regionGuardWords is the stack region's guard band below the lowest
// address sp has ever been written to (spec §3/§4.3).
const regionGuardWords = 1000

// MemoryRegion classifies a data word address relative to the image layout
// and the stack's observed extent (spec §3/§4.3).
type MemoryRegion uint8

const (
	RegionDataSection MemoryRegion = iota
	RegionHeap
	RegionStack
)

func (r MemoryRegion) String() string {
	switch r {
	case RegionDataSection:
		return "data"
	case RegionStack:
		return "stack"
	default:
		return "heap"
	}
}

// RegionStats counts reads and writes the region classifier has attributed
// to one memory region.
type RegionStats struct {
	Reads  uint64
	Writes uint64
}

// MemoryAccessError reports an out-of-bounds or type-violating memory
// access (spec §7).
type MemoryAccessError struct {
	Addr   uint32
	Reason string
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("memory access error at word %d: %s", e.Addr, e.Reason)
}

// SpyWatchKind is a bitmask selecting which memory accesses to report.
type SpyWatchKind uint8

const (
	SpyRead SpyWatchKind = 1 << iota
	SpyWrite
)

// SpyResult reports a watched memory access, emitted the cycle it fires
// (spec §4.7 watches).
type SpyResult struct {
	Addr   uint32
	IsRead bool
	Before uint32
	After  uint32
}

// Memory is the flat, typed, word-addressed data store (spec §4.3),
// grounded on the original's Memory<SIZE>/unify() lattice enforcement.
type Memory struct {
	words []register.TypedU32

	// textBegin/textEnd bound the instruction region [data_len, data_len+
	// text_len), loaded at word offset data_len per spec §6.1. Ordinary
	// data loads/stores landing in this range fail OutOfBounds; only
	// GetFromPC may read from it.
	textBegin uint32
	textEnd   uint32

	spies map[uint32]SpyWatchKind

	hpMin       uint32
	spMin       uint32
	spMax       uint32
	regionStats [3]RegionStats
}

// NewMemory allocates a zeroed memory of RAMWords words. The instruction
// region occupies word offsets [dataLen, dataLen+textLen); the data
// section occupies [0, dataLen) (spec §6.1).
func NewMemory(dataLen, textLen uint32) *Memory {
	words := make([]register.TypedU32, RAMWords)
	for i := range words {
		words[i] = register.TypedU32{Ty: register.Unknown, Value: 0}
	}
	return &Memory{
		words:     words,
		textBegin: dataLen,
		textEnd:   dataLen + textLen,
		spies:     map[uint32]SpyWatchKind{},
	}
}

// InitRegions seeds the memory-region classifier: hpMin is the word address
// of the first free heap word (data_len+text_len) and spMax is sp's initial
// word address, the stack's high-water mark (spec §3/§4.3).
func (m *Memory) InitRegions(hpMin, spMax uint32) {
	m.hpMin = hpMin
	m.spMax = spMax
	m.spMin = spMax
}

// UpdateSp records a new word address written to sp, shrinking spMin the
// way the original's update_sp only ever tracks the stack's lowest extent.
func (m *Memory) UpdateSp(wordAddr uint32) {
	if wordAddr < m.spMin {
		m.spMin = wordAddr
	}
}

// Region classifies a word address as data section, heap, or stack, per
// the original's MemoryRegionStatBuilder::get_region: below hpMin is the
// data section, within regionGuardWords words of the stack's low-water
// mark is stack, everything else is heap.
func (m *Memory) Region(addr uint32) MemoryRegion {
	if addr < m.hpMin {
		return RegionDataSection
	}
	guard := uint32(0)
	if m.spMin > regionGuardWords {
		guard = m.spMin - regionGuardWords
	}
	if addr >= guard {
		return RegionStack
	}
	return RegionHeap
}

// RegionCounts reports the accumulated read/write counts for one region.
func (m *Memory) RegionCounts(r MemoryRegion) RegionStats { return m.regionStats[r] }

// IsBRAM reports whether a word address is backed by block RAM rather than
// routed through the cache/DDR2 model (spec §4.4.2/§4.6).
func (m *Memory) IsBRAM(addr uint32) bool {
	return addr < bramHeadWords || addr >= RAMWords-bramGuardWords
}

func (m *Memory) boundsCheck(addr uint32) error {
	if int(addr) >= len(m.words) {
		return &MemoryAccessError{addr, "out of bounds"}
	}
	if addr >= m.textBegin && addr < m.textEnd {
		return &MemoryAccessError{addr, "out of bounds"}
	}
	return nil
}

// WatchAddr arms a spy on the given word address (spec §4.7 watches).
func (m *Memory) WatchAddr(addr uint32, kind SpyWatchKind) {
	m.spies[addr] |= kind
}

func (m *Memory) fireSpy(addr uint32, isRead bool, before, after uint32) *SpyResult {
	kind, watched := m.spies[addr]
	if !watched {
		return nil
	}
	if isRead && kind&SpyRead == 0 {
		return nil
	}
	if !isRead && kind&SpyWrite == 0 {
		return nil
	}
	return &SpyResult{Addr: addr, IsRead: isRead, Before: before, After: after}
}

// unify enforces the typed-memory lattice (spec §4.3): a read at a given
// expected type either succeeds keeping the stored tag (the stored tag
// already covers the request), promotes the stored tag to the request when
// the request refines it (an Unknown slot included), or fails when the
// stored and requested types are incomparable (e.g. F32 against an
// integer-tagged word).
func unify(stored, want register.Ty) (register.Ty, bool) {
	if stored == want || want == register.Unknown {
		return stored, true
	}
	if stored == register.Unknown {
		return want, true
	}
	if stored.Dominates(want) {
		return stored, true
	}
	if want.Dominates(stored) {
		return want, true
	}
	return stored, false
}

// Get reads a word with no type expectation, used for trace/debugger views.
func (m *Memory) Get(addr uint32) (uint32, *SpyResult, error) {
	if err := m.boundsCheck(addr); err != nil {
		return 0, nil, err
	}
	m.regionStats[m.Region(addr)].Reads++
	v := m.words[addr].Value
	return v, m.fireSpy(addr, true, v, v), nil
}

// GetI reads a word as an integer, enforcing the I32OrUsize branch of the
// lattice.
func (m *Memory) GetI(addr uint32) (uint32, *SpyResult, error) {
	if err := m.boundsCheck(addr); err != nil {
		return 0, nil, err
	}
	cur := m.words[addr]
	ty, ok := unify(cur.Ty, register.I32OrUsize)
	if !ok {
		return 0, nil, &MemoryAccessError{addr, "violates transmutation: expected integer"}
	}
	m.words[addr].Ty = ty
	m.regionStats[m.Region(addr)].Reads++
	return cur.Value, m.fireSpy(addr, true, cur.Value, cur.Value), nil
}

// GetF reads a word as a float, enforcing the F32 branch of the lattice.
func (m *Memory) GetF(addr uint32) (uint32, *SpyResult, error) {
	if err := m.boundsCheck(addr); err != nil {
		return 0, nil, err
	}
	cur := m.words[addr]
	ty, ok := unify(cur.Ty, register.F32)
	if !ok {
		return 0, nil, &MemoryAccessError{addr, "violates transmutation: expected float"}
	}
	m.words[addr].Ty = ty
	m.regionStats[m.Region(addr)].Reads++
	return cur.Value, m.fireSpy(addr, true, cur.Value, cur.Value), nil
}

// GetFromPC fetches an instruction word from the text region [data_len,
// data_len+text_len), bypassing the type lattice (instructions are
// untyped bit patterns). Any other address fails PcOutOfBounds.
func (m *Memory) GetFromPC(addr uint32) (uint32, error) {
	if addr < m.textBegin || addr >= m.textEnd {
		return 0, &MemoryAccessError{addr, "pc out of bounds"}
	}
	return m.words[addr].Value, nil
}

// Set writes an integer-tagged word (spec §4.3: stores always retag as
// I32OrUsize on the integer path).
func (m *Memory) Set(addr uint32, v uint32) (*SpyResult, error) {
	if err := m.boundsCheck(addr); err != nil {
		return nil, err
	}
	before := m.words[addr].Value
	m.words[addr] = register.TypedU32{Ty: register.I32OrUsize, Value: v}
	m.regionStats[m.Region(addr)].Writes++
	return m.fireSpy(addr, false, before, v), nil
}

// SetF writes a float-tagged word.
func (m *Memory) SetF(addr uint32, v uint32) (*SpyResult, error) {
	if err := m.boundsCheck(addr); err != nil {
		return nil, err
	}
	before := m.words[addr].Value
	m.words[addr] = register.TypedU32{Ty: register.F32, Value: v}
	m.regionStats[m.Region(addr)].Writes++
	return m.fireSpy(addr, false, before, v), nil
}

// LoadData installs the initial data segment at word offset 0 (spec §6.1).
func (m *Memory) LoadData(words []uint32) {
	for i, w := range words {
		m.words[i] = register.TypedU32{Ty: register.Unknown, Value: w}
	}
}

// LoadText installs the instruction stream starting at word offset
// textBegin (data_len), per spec §6.1.
func (m *Memory) LoadText(words []uint32) {
	base := m.textBegin
	for i, w := range words {
		m.words[int(base)+i] = register.TypedU32{Ty: register.Unknown, Value: w}
	}
}
