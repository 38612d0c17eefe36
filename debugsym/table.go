// Package debugsym holds the optional debug-symbol table consulted by the
// disassembler and breakpoint-by-name lookups (spec §4.7.1).
package debugsym

import "sort"

// Symbol names a single address. Size is the symbol's extent in words; a
// zero Size means the extent is unknown, and disassemble_near falls back to
// its default window (spec §4.7.1).
type Symbol struct {
	Name string
	Addr uint32
	Size uint32
}

// Table is a sorted-by-address symbol table supporting exact and
// nearest-preceding-address lookups.
type Table struct {
	byAddr []Symbol
	byName map[string]uint32
}

// New builds a Table from an unordered slice of symbols.
func New(symbols []Symbol) *Table {
	t := &Table{
		byAddr: append([]Symbol(nil), symbols...),
		byName: make(map[string]uint32, len(symbols)),
	}
	sort.Slice(t.byAddr, func(i, j int) bool { return t.byAddr[i].Addr < t.byAddr[j].Addr })
	for _, s := range symbols {
		t.byName[s.Name] = s.Addr
	}
	return t
}

// Lookup resolves a symbol name to its address.
func (t *Table) Lookup(name string) (uint32, bool) {
	addr, ok := t.byName[name]
	return addr, ok
}

// AtAddr reports the symbol name exactly at addr, if any.
func (t *Table) AtAddr(addr uint32) (string, bool) {
	i := sort.Search(len(t.byAddr), func(i int) bool { return t.byAddr[i].Addr >= addr })
	if i < len(t.byAddr) && t.byAddr[i].Addr == addr {
		return t.byAddr[i].Name, true
	}
	return "", false
}

// NearestSymbol returns the symbol with the largest address <= addr, used
// by disassemble_near's label line (spec §4.7.1).
func (t *Table) NearestSymbol(addr uint32) (Symbol, bool) {
	i := sort.Search(len(t.byAddr), func(i int) bool { return t.byAddr[i].Addr > addr })
	if i == 0 {
		return Symbol{}, false
	}
	return t.byAddr[i-1], true
}
