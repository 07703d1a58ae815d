// Package store selects the core.Store backend named by the configuration.
package store

import (
	"context"
	"fmt"

	"bookkeeping/internal/config"
	"bookkeeping/internal/core"
	"bookkeeping/internal/db"
	"bookkeeping/internal/store/memory"
	"bookkeeping/internal/store/postgres"
)

// Open returns the configured store and a function releasing its resources.
func Open(ctx context.Context, cfg *config.Config) (core.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), func() {}, nil
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		return postgres.New(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}
