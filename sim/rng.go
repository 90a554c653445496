package sim

import (
	"math/rand"
)

// NewServiceRNG returns the stream every service-time and batch-size draw
// comes from. The seed is used directly so --seed maps 1:1 onto math/rand,
// and two runs with the same seed and configuration draw identical values.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
func NewServiceRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// === Draws ===

// Uniform draws a float uniformly from [r.Min, r.Max].
// A degenerate range returns r.Min without consuming randomness.
func Uniform(rng *rand.Rand, r TimeRange) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + (r.Max-r.Min)*rng.Float64()
}

// UniformInt draws an integer uniformly from [r.Min, r.Max], inclusive.
// A degenerate range returns r.Min without consuming randomness.
func UniformInt(rng *rand.Rand, r LoadRange) int {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}
