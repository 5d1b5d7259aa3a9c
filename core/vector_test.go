package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		sim := CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
		assert.InDelta(t, 1.0, sim, 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		sim := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		assert.InDelta(t, 0.0, sim, 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		sim := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
		assert.InDelta(t, -1.0, sim, 1e-6)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity(nil, []float32{1}))
	})

	t.Run("zero magnitude", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	})
}
