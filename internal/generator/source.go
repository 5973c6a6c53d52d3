// Package generator synthesizes fake videos and comments from fixed templates.
package generator

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Source is a goroutine-safe random source shared by the generators and the
// engagement engine. Two sources built from the same non-zero seed produce the
// same sequence.
type Source struct {
	mu    sync.Mutex
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// NewSource creates a Source. A zero seed draws one from the clock.
func NewSource(seed uint64) *Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Source{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		faker: gofakeit.New(seed),
	}
}

// IntRange returns a uniform int in [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.IntN(hi-lo+1)
}

// Uniform returns a uniform float64 in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

// Pick returns a uniformly chosen element. items must not be empty.
func (s *Source) Pick(items []string) string {
	return items[s.IntN(len(items))]
}

// IntN returns a uniform int in [0, n).
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Sample returns n distinct elements of items in random order.
func (s *Source) Sample(items []string, n int) []string {
	if n > len(items) {
		n = len(items)
	}
	s.mu.Lock()
	perm := s.rng.Perm(len(items))
	s.mu.Unlock()

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = items[perm[i]]
	}
	return out
}

// WeightedIndex draws an index with probability proportional to its weight.
// Weights must be positive.
func (s *Source) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := s.IntN(total)
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

// Name returns a fake full name.
func (s *Source) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.Name()
}

// FirstName returns a fake given name.
func (s *Source) FirstName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.FirstName()
}

// Phrase returns a short filler sentence.
func (s *Source) Phrase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faker.HackerPhrase()
}
