package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditpulse/evalengine/pkg/similarity"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"identical", []float32{3, 4}, []float32{3, 4}, 1.0},
		{"opposite", []float32{1, 2, 3}, []float32{-1, -2, -3}, -1.0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := similarity.Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-5)
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := similarity.Cosine([]float32{1, 0, 0}, []float32{1, 0})
	assert.ErrorIs(t, err, similarity.ErrDimensionMismatch)
}

func TestCosine_DegenerateVector(t *testing.T) {
	_, err := similarity.Cosine([]float32{0, 0}, []float32{1, 0})
	assert.ErrorIs(t, err, similarity.ErrDegenerateVector)

	_, err = similarity.Cosine([]float32{1, 0}, []float32{0, 0})
	assert.ErrorIs(t, err, similarity.ErrDegenerateVector)
}

func TestCosine_Empty(t *testing.T) {
	_, err := similarity.Cosine([]float32{}, []float32{})
	assert.ErrorIs(t, err, similarity.ErrEmptyInput)
}

func TestMean(t *testing.T) {
	mean, err := similarity.Mean([][]float32{
		{1, 2},
		{3, 4},
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{2, 3}, mean, 1e-6)
}

func TestMean_SingleVector(t *testing.T) {
	mean, err := similarity.Mean([][]float32{{0.5, -0.5}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.5, -0.5}, mean, 1e-6)
}

func TestMean_Empty(t *testing.T) {
	_, err := similarity.Mean(nil)
	assert.ErrorIs(t, err, similarity.ErrEmptyInput)
}

func TestMean_MismatchedDims(t *testing.T) {
	_, err := similarity.Mean([][]float32{{1, 2}, {1}})
	assert.ErrorIs(t, err, similarity.ErrDimensionMismatch)
}
