// Package randutil derives reproducible PCG generators for shoes and simulations.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words come from the one seed so call sites only carry an int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed when it is non-zero and a clock-derived seed otherwise.
// Zero is the "pick one for me" value accepted by the CLI and config.
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return int64(mix(uint64(time.Now().UnixNano())))
}

// Derive returns the seed for stream n of a run, e.g. simulator worker n.
// Streams derived from the same base seed never overlap in practice.
func Derive(seed int64, n int) int64 {
	return int64(mix(uint64(seed) + uint64(n+1)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
