package punkrun

import "math/rand/v2"

// RandomRing is a pre-filled ring of uniform floats in [0, 1). Values are
// consumed by index during a tick; Refresh regenerates only the entries
// consumed since the previous refresh, so a tick that draws no numbers costs
// nothing.
type RandomRing struct {
	values []float32
	cursor int // next index to consume
	start  int // cursor at the last refresh
	used   int // entries consumed since the last refresh, capped at len(values)
	src    *rand.Rand
}

// DefaultRandomRingSize is used when a non-positive size is requested.
const DefaultRandomRingSize = 256

// NewRandomRing creates a ring of size values seeded deterministically.
func NewRandomRing(size int, seed uint64) *RandomRing {
	if size <= 0 {
		size = DefaultRandomRingSize
	}
	r := &RandomRing{
		values: make([]float32, size),
		src:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for i := range r.values {
		r.values[i] = r.src.Float32()
	}
	return r
}

// Len returns the ring size.
func (r *RandomRing) Len() int { return len(r.values) }

// Float returns the next value in [0, 1).
func (r *RandomRing) Float() float32 {
	v := r.values[r.cursor]
	r.cursor++
	if r.cursor == len(r.values) {
		r.cursor = 0
	}
	if r.used < len(r.values) {
		r.used++
	}
	return v
}

// IntN returns the next value scaled to [0, n). n must be positive.
func (r *RandomRing) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	i := int(r.Float() * float32(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Between returns the next value scaled to [lo, hi].
func (r *RandomRing) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Pending returns the number of entries consumed since the last refresh.
func (r *RandomRing) Pending() int { return r.used }

// Refresh regenerates the entries consumed since the last refresh.
func (r *RandomRing) Refresh() {
	for i := 0; i < r.used; i++ {
		j := (r.start + i) % len(r.values)
		r.values[j] = r.src.Float32()
	}
	r.start = r.cursor
	r.used = 0
}
