// Package storage selects the persistence backend for embeddings and uploads.
package storage

import (
	"fmt"

	"github.com/custodia-labs/orion/internal/adapters/driven/storage/jsonfs"
	"github.com/custodia-labs/orion/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/orion/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/orion/internal/core/domain"
	"github.com/custodia-labs/orion/internal/core/ports/driven"
)

// Open returns the store for the configured backend.
// An empty backend selects JSON files.
func Open(settings domain.StorageSettings) (driven.Store, error) {
	switch settings.Backend {
	case domain.StorageJSON, "":
		return jsonfs.NewStore(settings.DataDir)
	case domain.StorageSQLite:
		return sqlite.NewStore(settings.DataDir)
	case domain.StorageMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
