package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	assert.InDelta(t, 1.0, Dot([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Dot([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Dot([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 11.0, Dot([]float32{1, 2}, []float32{3, 4}), 1e-6)
	assert.InDelta(t, 0.0, Dot(nil, nil), 1e-9)
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestNormalize_InPlace(t *testing.T) {
	v := []float32{2, 0}
	got := Normalize(v)
	assert.Equal(t, float32(1), v[0], "normalization mutates the input slice")
	assert.Equal(t, &v[0], &got[0], "returned slice aliases the input")
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	got := Normalize(v)
	assert.Equal(t, []float32{0, 0, 0}, got)
}

func TestNormalize_ScaleInvariance(t *testing.T) {
	a := Normalize([]float32{1, 2, 3})
	b := Normalize([]float32{10, 20, 30})
	assert.InDelta(t, 1.0, Dot(a, b), 1e-6,
		"scalar multiples normalise to the same direction")
}
