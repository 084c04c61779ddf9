// Package random provides the free-running randomness used outside case generation: identifiers and
// dialogue phrasing. Case facts never come from here; see package prng for the seeded stream.
package random

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns n cryptographically random ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedLetters))))
		if err != nil {
			return "", err
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}

// Source is a non-seeded stream of floats in [0,1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 {
	return mathrand.Float64() //nolint:gosec // phrasing variety, not security sensitive.
}

// Global returns a Source backed by the auto-seeded math/rand/v2 generator.
func Global() Source {
	return globalSource{}
}

// Pick returns a uniformly chosen element of options. It panics on an empty slice.
func Pick[T any](src Source, options []T) T {
	return options[int(src.Float64()*float64(len(options)))]
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Fixed is a Source that cycles through the given values. It is meant for tests.
type Fixed struct {
	Values []float64
	next   int
}

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}
