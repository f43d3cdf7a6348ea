// Package entropy provides the random sources behind the documented rolls:
// combat jitter, objection variance, and the objection compliance check.
// Every source is deterministic for a given seed so a campaign replays exactly.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source yields floats in [0, 1).
type Source interface {
	Float() float64
}

// Seeded is a reproducible source backed by math/rand.
type Seeded struct {
	seed int64
	rng  *mrand.Rand
}

// NewSeeded creates a source for the given seed. A zero seed draws one from
// crypto/rand so unseeded campaigns still differ between runs.
func NewSeeded(seed int64) *Seeded {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return &Seeded{seed: seed, rng: mrand.New(mrand.NewSource(seed))}
}

// Float returns a random float64 in [0, 1).
func (s *Seeded) Float() float64 {
	return s.rng.Float64()
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// Sequence replays a fixed list of values, cycling when exhausted.
// Used to pin rolls in tests and scripted scenarios.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence creates a source that returns values in order.
// An empty sequence always returns 0.5.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float returns the next value of the sequence.
func (s *Sequence) Float() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Uniform maps a roll from src onto [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float()
}

// Triangular returns a value in (-spread, spread) peaked at zero, built from
// the mean of two uniform rolls.
func Triangular(src Source, spread float64) float64 {
	a := src.Float()
	b := src.Float()
	return ((a + b) - 1) * spread
}

// CryptoSeed generates a positive seed using crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen but fall back to a fixed seed.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
