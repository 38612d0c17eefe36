// Package icache models the direct-mapped cache that the optional pipeline
// timing model consults for load/store data addresses (spec §4.4.2).
package icache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// NumLines is the number of word-indexed cache lines (spec §4.4.2).
const NumLines = 16384

// Config holds the instruction cache's timing parameters, JSON-loadable the
// way the teacher's timing/latency package loads its tables.
type Config struct {
	HitLatency  uint64 `json:"hit_latency"`
	MissLatency uint64 `json:"miss_latency"`
}

// DefaultConfig returns the cache's baseline timing (spec §4.4.2/§4.6):
// two cycles on a hit, the DDR2 access cost of 90 on a miss. Addresses
// backed by block RAM bypass this cache entirely (see emu.Memory.IsBRAM)
// and are never charged through Access.
func DefaultConfig() Config {
	return Config{HitLatency: 2, MissLatency: 90}
}

// ICache is a direct-mapped, word-granularity data cache built on
// Akita's cache directory for tag/LRU bookkeeping. Associativity is forced
// to 1: a direct-mapped cache has exactly one way per set, so the
// directory's LRU victim finder always returns that set's sole block —
// it never actually compares ages.
type ICache struct {
	cfg       Config
	directory *akitacache.DirectoryImpl
}

// New constructs a cache of NumLines direct-mapped lines.
func New(cfg Config) *ICache {
	return &ICache{
		cfg: cfg,
		directory: akitacache.NewDirectory(
			NumLines, 1, 4,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Access looks up the data word at the given word address, returning
// whether it hit and the latency the pipeline timing model should charge.
func (c *ICache) Access(wordAddr uint32) (hit bool, latency uint64) {
	addr := uint64(wordAddr) * 4
	block := c.directory.Lookup(0, addr)
	if block != nil && block.IsValid {
		c.directory.Visit(block)
		return true, c.cfg.HitLatency
	}

	victim := c.directory.FindVictim(addr)
	if victim != nil {
		victim.Tag = addr
		victim.IsValid = true
		c.directory.Visit(victim)
	}
	return false, c.cfg.MissLatency
}

// Reset invalidates every line.
func (c *ICache) Reset() {
	c.directory.Reset()
}
