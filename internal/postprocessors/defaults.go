package postprocessors

import (
	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
	"github.com/custodia-labs/orion/internal/postprocessors/chunker"
)

// Config keys understood by the built-in chunkers.
const (
	ConfigChunkSize      = "chunk_size"
	ConfigOverlapPercent = "overlap_percent"
)

// RegisterDefaults registers all built-in chunkers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(domain.ChunkerTokens, buildTokens)
	r.Register(domain.ChunkerParagraphs, buildParagraphs)
}

// NewDefaultRegistry returns a registry holding the built-in chunkers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// BuildFromSettings creates the chunker named by the ingest settings.
func BuildFromSettings(r *Registry, s domain.IngestSettings) (driven.Chunker, error) {
	name := s.Chunker
	if name == "" {
		name = domain.ChunkerTokens
	}
	return r.Build(name, map[string]any{
		ConfigChunkSize:      s.ChunkSize,
		ConfigOverlapPercent: s.OverlapPercent,
	})
}

func buildTokens(cfg map[string]any) (driven.Chunker, error) {
	return chunker.New(optionsFromConfig(cfg)...), nil
}

func buildParagraphs(cfg map[string]any) (driven.Chunker, error) {
	return chunker.NewParagraphs(optionsFromConfig(cfg)...), nil
}

// optionsFromConfig maps generic config onto chunker options.
// Missing keys keep the chunker defaults.
func optionsFromConfig(cfg map[string]any) []chunker.Option {
	var opts []chunker.Option
	if size, ok := getIntFromConfig(cfg, ConfigChunkSize); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if percent, ok := getIntFromConfig(cfg, ConfigOverlapPercent); ok {
		opts = append(opts, chunker.WithOverlapPercent(percent))
	}
	return opts
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
