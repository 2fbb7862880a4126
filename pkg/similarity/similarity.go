package similarity

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch means the two vectors came from different encoders.
	// That is a caller bug, not a runtime condition, so it propagates.
	ErrDimensionMismatch = errors.New("vectors have different dimensions")

	// ErrDegenerateVector means at least one vector has zero norm; cosine
	// similarity is undefined for it.
	ErrDegenerateVector = errors.New("zero-norm vector has no defined cosine similarity")

	// ErrEmptyInput means there was nothing to encode or average.
	ErrEmptyInput = errors.New("empty input")
)

// Cosine returns dot(a,b) / (|a|*|b|).
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, ErrEmptyInput
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateVector
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Mean returns the arithmetic mean of the given vectors. All vectors must
// share one dimensionality.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, dim, len(vec))
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
	}

	mean := make([]float32, dim)
	n := float64(len(vectors))
	for i, v := range sum {
		mean[i] = float32(v / n)
	}
	return mean, nil
}
