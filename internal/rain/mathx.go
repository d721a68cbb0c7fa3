package rain

import (
	"math"
	"math/rand/v2"
)

// Rand is the source of uniform draws used by emission and spawning.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// NewRand returns a PCG-backed source. seed 0 picks a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomInRange returns a uniform value in [min, max).
func randomInRange(r Rand, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// randomInt returns floor(u*n) for n > 0, else 0.
func randomInt(r Rand, n int) int {
	if n <= 0 {
		return 0
	}
	v := int(math.Floor(r.Float64() * float64(n)))
	if v >= n {
		v = n - 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
