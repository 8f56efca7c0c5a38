package rng

import "math/rand"

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// Seeded is a deterministic Generator backed by math/rand
// This should only be used by tests and replays; live games use Crypto
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded returns a Generator that always produces the same sequence for seed
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))} // nolint:gosec
}

// Intn returns a random number from 0 <= x < n
func (s *Seeded) Intn(n int) int {
	return s.rng.Intn(n)
}
