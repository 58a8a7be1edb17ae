package sac

import (
	"math/rand"
)

// NewRandomSampler samples indices in [0, n) from a generator seeded by
// seed, so that the result is reproducible.
func NewRandomSampler(n int, seed int64) Sampler {
	return &randomSampler{n: n, rnd: rand.New(rand.NewSource(seed))}
}

type randomSampler struct {
	n   int
	rnd *rand.Rand
}

func (s *randomSampler) Sample() int {
	return s.rnd.Intn(s.n)
}
