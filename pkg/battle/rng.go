package battle

import "math/rand"

// RNG wraps math/rand.Rand behind the two operations combat needs.
// Seeded construction keeps battles reproducible in tests.
type RNG struct {
	seed int64
	src  *rand.Rand
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Between returns a uniform random integer in [min, max] inclusive.
func (r *RNG) Between(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.src.Intn(max-min+1)
}

// Chance performs a Bernoulli trial with probability p, clamped to [0, 1].
// The clamp matters: flee probability scales with level and exceeds 1.0 past
// level 5.
func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.src.Float64() < p
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}
