// Package predictor implements the branch predictor used by the optional
// pipeline timing model (spec §4.4.2/§4.6).
package predictor

// numEntries is the size of the direct-mapped predictor table.
const numEntries = 64

// state is one of the four 2-bit saturating-counter states.
type state uint8

const (
	strongNotTaken state = iota
	weakNotTaken
	weakTaken
	strongTaken
)

func (s state) predictTaken() bool { return s >= weakTaken }

func (s state) update(taken bool) state {
	if taken {
		if s < strongTaken {
			return s + 1
		}
		return s
	}
	if s > strongNotTaken {
		return s - 1
	}
	return s
}

// Predictor is a 64-entry table of 2-bit saturating counters, indexed by
// pc mod 64. Per spec §9's documented open question, queries use the
// ALREADY-INCREMENTED pc (the address of the instruction following the
// branch), not the branch's own address — preserved exactly from the
// original implementation rather than "fixed".
type Predictor struct {
	table [numEntries]state
}

// New returns a predictor with every entry initialized to weakly-taken
// (spec §4.5).
func New() *Predictor {
	p := &Predictor{}
	for i := range p.table {
		p.table[i] = weakTaken
	}
	return p
}

func index(pc uint32) uint32 { return pc % numEntries }

// Predict reports whether the branch reachable from the given (already
// incremented) pc is predicted taken.
func (p *Predictor) Predict(incrementedPC uint32) bool {
	return p.table[index(incrementedPC)].predictTaken()
}

// Update trains the counter for incrementedPC with the branch's actual
// outcome.
func (p *Predictor) Update(incrementedPC uint32, taken bool) {
	i := index(incrementedPC)
	p.table[i] = p.table[i].update(taken)
}
