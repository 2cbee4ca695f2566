package economy

import (
	"math/rand/v2"
)

// Deterministic per-day generators: the same city and day always reproduce
// the same tick, which is what makes a day replayable while debugging.
// Non-cryptographic PRNG is intentional. #nosec G404

const cityDaySeedMult = 1000003

// CityDayRNG returns the generator for one city's market tick on one day.
// Seed = fnv32(city id) XOR day*1000003, masked to 32 bits.
func CityDayRNG(cityID string, day int) *rand.Rand {
	seed := (uint64(seedHash(cityID)) ^ (uint64(day) * cityDaySeedMult)) & 0xFFFFFFFF
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// DayRNG returns the generator for global per-day systems (NPC trade).
// Seed = day*2654435761, masked to 32 bits.
func DayRNG(day int) *rand.Rand {
	seed := (uint64(day) * 2654435761) & 0xFFFFFFFF
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// weightedPick returns an index into weights, chosen proportionally.
func weightedPick(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// sampleIndices picks up to k distinct indices from [0, n) without
// replacement, in draw order.
func sampleIndices(rng *rand.Rand, n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// SampleIndices is used by the NPC trade engine's city/good sampling.
func SampleIndices(rng *rand.Rand, n, k int) []int { return sampleIndices(rng, n, k) }

// Uniform is the exported draw helper shared with the trade engine.
func Uniform(rng *rand.Rand, lo, hi float64) float64 { return uniform(rng, lo, hi) }
