package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNG_BetweenInclusive(t *testing.T) {
	r := NewRNG(99)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := r.Between(-2, 2)
		assert.GreaterOrEqual(t, v, -2)
		assert.LessOrEqual(t, v, 2)
		seen[v] = true
	}
	// Both endpoints are reachable.
	assert.True(t, seen[-2])
	assert.True(t, seen[2])
}

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Between(0, 100), b.Between(0, 100))
	}
}

func TestRNG_ChanceClamps(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 100; i++ {
		assert.False(t, r.Chance(-0.5))
		assert.True(t, r.Chance(1.5))
	}
}

func TestRNG_Seed(t *testing.T) {
	assert.Equal(t, int64(42), NewRNG(42).Seed())
}
