package agronomy

import (
	"math/rand/v2"
	"sync"
)

// RandomSource is the only nondeterministic input of the calculator
type RandomSource interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// lockedSource serializes access to a *rand.Rand, which is not safe for
// concurrent use on its own.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// NewSeededSource returns a deterministic source for a given seed
func NewSeededSource(seed uint64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSource returns a source seeded from the runtime generator
func NewRandomSource() RandomSource {
	return NewSeededSource(rand.Uint64())
}
