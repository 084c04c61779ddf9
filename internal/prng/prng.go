// Package prng implements the seeded linear congruential generator that drives case generation.
//
// All arithmetic is done on integers so that a seed produces the same stream on every platform.
package prng

import "time"

const (
	multiplier = 1103515245
	increment  = 12345
	mask       = 0x7fffffff
)

// Rand is a deterministic stream of floats in [0,1). It is not safe for concurrent use.
type Rand struct {
	state uint64
	draws int
}

// New returns a stream seeded with seed. Any integer is a valid seed, including negative ones.
func New(seed int64) *Rand {
	return &Rand{state: uint64(seed)} //nolint:gosec // wrapping is intended; only the low 31 bits matter.
}

// Float returns the next value of the stream in [0,1).
func (r *Rand) Float() float64 {
	// Only the low 31 bits survive the mask, so uint64 overflow of large seeds is harmless.
	r.state = (r.state*multiplier + increment) & mask
	r.draws++
	if r.state == mask {
		// state/mask would be exactly 1.
		return float64(mask-1) / mask
	}
	return float64(r.state) / mask
}

// Draws reports how many values have been consumed.
func (r *Rand) Draws() int {
	return r.draws
}

// Intn returns a value in [0,n). It panics if n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("prng: Intn called with non-positive n")
	}
	return int(r.Float() * float64(n))
}

// Chance reports true with probability p, consuming one draw.
func (r *Rand) Chance(p float64) bool {
	return r.Float() < p
}

// Pick returns one element of options, consuming one draw. It panics on an empty slice.
func Pick[T any](r *Rand, options []T) T {
	return options[r.Intn(len(options))]
}

// Shuffle returns a Fisher–Yates shuffled copy of items. It iterates from the last index down to 1 and swaps
// with a position drawn from [0, i], consuming exactly len(items)-1 draws.
func Shuffle[T any](r *Rand, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// TodaySeed derives the daily seed YYYYMMDD from the calendar date of t.
func TodaySeed(t time.Time) int64 {
	return int64(t.Year()*10000 + int(t.Month())*100 + t.Day()) //nolint:mnd // YYYYMMDD
}

// ReplaySeed derives a fresh seed from the timestamp so that replays differ.
func ReplaySeed(t time.Time) int64 {
	return t.UnixMilli()
}
