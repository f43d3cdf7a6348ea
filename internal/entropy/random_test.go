package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededIsReproducible(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float(), b.Float())
	}
	assert.Equal(t, int64(7), a.Seed())
}

func TestZeroSeedDrawsCryptoSeed(t *testing.T) {
	s := NewSeeded(0)
	assert.NotZero(t, s.Seed())
}

func TestSequenceCycles(t *testing.T) {
	s := NewSequence(0.1, 0.9)
	assert.Equal(t, 0.1, s.Float())
	assert.Equal(t, 0.9, s.Float())
	assert.Equal(t, 0.1, s.Float())

	assert.Equal(t, 0.5, NewSequence().Float())
}

func TestTriangularBounds(t *testing.T) {
	assert.InDelta(t, 0.0, Triangular(NewSequence(0.5, 0.5), 0.05), 1e-12)
	assert.InDelta(t, 0.05, Triangular(NewSequence(1.0, 1.0), 0.05), 1e-12)
	assert.InDelta(t, -0.05, Triangular(NewSequence(0, 0), 0.05), 1e-12)

	src := NewSeeded(3)
	for i := 0; i < 200; i++ {
		v := Triangular(src, 0.04)
		assert.True(t, v > -0.04 && v < 0.04)
	}
}

func TestUniform(t *testing.T) {
	assert.InDelta(t, 0.9, Uniform(NewSequence(0), 0.9, 1.1), 1e-12)
	assert.InDelta(t, 1.0, Uniform(NewSequence(0.5), 0.9, 1.1), 1e-12)
}
