package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

func TestNewDefaultRegistry(t *testing.T) {
	r, err := NewDefaultRegistry(domain.DefaultAppSettings().Search)
	require.NoError(t, err)
	assert.Equal(t, []domain.Algorithm{domain.AlgorithmCosine, domain.AlgorithmHybrid}, r.Names())

	a, err := r.Get(domain.AlgorithmHybrid)
	require.NoError(t, err)
	h, ok := a.(*Hybrid)
	require.True(t, ok)
	cw, kw := h.Weights()
	assert.Equal(t, 0.7, cw)
	assert.Equal(t, 0.3, kw)
}

func TestNewDefaultRegistry_InvalidWeights(t *testing.T) {
	s := domain.DefaultAppSettings().Search
	s.CosineWeight = 0.6
	_, err := NewDefaultRegistry(s)
	assert.ErrorIs(t, err, domain.ErrInvalidWeights)
}

func TestRegistry_Get_Unknown(t *testing.T) {
	r := NewRegistry(NewCosine())
	_, err := r.Get(domain.AlgorithmHybrid)
	assert.ErrorIs(t, err, domain.ErrUnsupportedAlgorithm)
}

func TestRegistry_Names_Copy(t *testing.T) {
	r := NewRegistry(NewCosine(), NewCosine())
	names := r.Names()
	require.Len(t, names, 1)
	names[0] = "mutated"
	assert.Equal(t, domain.AlgorithmCosine, r.Names()[0])
}
