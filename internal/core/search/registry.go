package search

import (
	"fmt"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// Registry maps algorithm names to instances. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	byName map[domain.Algorithm]Algorithm
	order  []domain.Algorithm
}

// NewRegistry registers algs in order. A later algorithm with the same name
// replaces an earlier one.
func NewRegistry(algs ...Algorithm) *Registry {
	r := &Registry{byName: make(map[domain.Algorithm]Algorithm, len(algs))}
	for _, a := range algs {
		if _, exists := r.byName[a.Name()]; !exists {
			r.order = append(r.order, a.Name())
		}
		r.byName[a.Name()] = a
	}
	return r
}

// NewDefaultRegistry registers cosine and a hybrid built from settings.
func NewDefaultRegistry(settings domain.SearchSettings) (*Registry, error) {
	hybrid, err := NewHybrid(settings.CosineWeight, settings.KeywordWeight,
		WithSmallCollectionThreshold(settings.SmallCollectionThreshold))
	if err != nil {
		return nil, err
	}
	return NewRegistry(NewCosine(), hybrid), nil
}

// Get returns the algorithm registered for name.
func (r *Registry) Get(name domain.Algorithm) (Algorithm, error) {
	a, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedAlgorithm, name)
	}
	return a, nil
}

// Names returns registered algorithm names in registration order.
func (r *Registry) Names() []domain.Algorithm {
	out := make([]domain.Algorithm, len(r.order))
	copy(out, r.order)
	return out
}
