package utils

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is a goroutine-safe pseudo random source. Simulated feeds take one so
// tests can seed them.
type Random struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a source seeded with seed.
func NewRandom(seed uint64) *Random {
	return &Random{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeededRandom returns a source seeded from the wall clock.
func NewTimeSeededRandom() *Random {
	return NewRandom(uint64(time.Now().UnixNano()))
}

// Float64 returns a value in [0, 1).
func (r *Random) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

// IntN returns a value in [0, n). n must be positive.
func (r *Random) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.IntN(n)
}

// Between returns a value in [lo, hi).
func (r *Random) Between(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntBetween returns an integer in [lo, hi] inclusive.
func (r *Random) IntBetween(lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

// Shuffle permutes n elements through swap.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.r.Shuffle(n, swap)
}
