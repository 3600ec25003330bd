package domain

import (
	"fmt"
	"math"
)

// Vector is an immutable embedding produced by a named model.
// The zero value is an unset vector with dimension 0.
type Vector struct {
	values []float32
	model  string
}

// NewVector copies values into a new Vector tagged with model.
// An empty value slice is rejected.
func NewVector(values []float32, model string) (Vector, error) {
	if len(values) == 0 {
		return Vector{}, fmt.Errorf("%w: dimension must be positive", ErrInvalidVector)
	}
	cp := make([]float32, len(values))
	copy(cp, values)
	return Vector{values: cp, model: model}, nil
}

// MustVector is NewVector for literals known to be valid. It panics on error.
func MustVector(values []float32, model string) Vector {
	v, err := NewVector(values, model)
	if err != nil {
		panic(err)
	}
	return v
}

// Values returns a copy of the vector components.
func (v Vector) Values() []float32 {
	cp := make([]float32, len(v.values))
	copy(cp, v.values)
	return cp
}

// Dimension returns the number of components.
func (v Vector) Dimension() int {
	return len(v.values)
}

// Model returns the embedding model that produced the vector.
func (v Vector) Model() string {
	return v.model
}

// IsSet reports whether the vector holds any components.
func (v Vector) IsSet() bool {
	return len(v.values) > 0
}

// Magnitude returns the L2 norm.
func (v Vector) Magnitude() float64 {
	var sum float64
	for _, x := range v.values {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between v and other, in [-1, 1].
// If either vector has zero magnitude the similarity is 0.
func (v Vector) CosineSimilarity(other Vector) (float64, error) {
	if v.Dimension() != other.Dimension() {
		return 0, fmt.Errorf("%w: cannot compare vectors of dimension %d and %d",
			ErrDimensionMismatch, v.Dimension(), other.Dimension())
	}

	var dot, normA, normB float64
	for i := range v.values {
		a := float64(v.values[i])
		b := float64(other.values[i])
		dot += a * b
		normA += a * a
		normB += b * b
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push parallel vectors a hair past 1.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}

// Equal reports value equality: same model and identical components.
func (v Vector) Equal(other Vector) bool {
	if v.model != other.model || len(v.values) != len(other.values) {
		return false
	}
	for i := range v.values {
		if v.values[i] != other.values[i] {
			return false
		}
	}
	return true
}
