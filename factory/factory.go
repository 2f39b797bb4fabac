// Package factory builds the taskflow.Store selected by configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/taskflow"
	"github.com/meikuraledutech/taskflow/config"
	"github.com/meikuraledutech/taskflow/memory"
	"github.com/meikuraledutech/taskflow/postgres"
	"github.com/meikuraledutech/taskflow/sqlite"
)

// NewStore opens the configured store and makes sure its schema exists.
func NewStore(ctx context.Context, cfg config.Storage) (taskflow.Store, error) {
	var (
		store taskflow.Store
		err   error
	)
	switch cfg.Type {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageSQLite:
		store, err = sqlite.Open(cfg.SQLite.Path)
	case config.StoragePostgres:
		var pool *pgxpool.Pool
		pool, err = pgxpool.New(ctx, cfg.Postgres.URL)
		if err == nil {
			store = postgres.New(pool)
		}
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Type, err)
	}

	if err := store.CreateSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return store, nil
}
