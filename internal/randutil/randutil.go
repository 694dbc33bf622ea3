// Package randutil seeds the deterministic generators used by the sampler,
// the equity estimator, and the k-means initialiser.
package randutil

import rand "math/rand/v2"

// Worker seeds are assigned as base+workerID, so consecutive seeds reach
// this package routinely. Raw adjacent PCG states start out strongly
// correlated; each seed word therefore passes through a splitmix64
// finalizer before it becomes generator state.
const goldenGamma = 0x9e3779b97f4a7c15

// New returns a *rand.Rand that always produces the same sequence for the
// same seed. rand/v2's PCG wants two 64-bit state words; both derive from
// the single caller-provided seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(scramble(u), scramble(u+goldenGamma)))
}

func scramble(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
