// Package dwitlit provides the public entry point for opening a record store.
// It exposes the backend factory while keeping implementations internal.
package dwitlit

import (
	"github.com/mesh-intelligence/dwitlit/internal/memory"
	"github.com/mesh-intelligence/dwitlit/internal/sqlite"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// Open returns a store for config.Backend.
//
// Example:
//
//	store, err := dwitlit.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".dwitlit/data",
//	})
//	if err != nil { ... }
//	defer store.Close()
func Open(config types.Config) (types.Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Backend {
	case types.BackendMemory:
		return memory.NewBackend(config), nil
	default:
		b, err := sqlite.Open(config)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
