package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/taskflow/config"
	"github.com/meikuraledutech/taskflow/memory"
	"github.com/meikuraledutech/taskflow/sqlite"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := NewStore(ctx, config.Storage{Type: config.StorageMemory})
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &memory.Store{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		var cfg config.Storage
		cfg.Type = config.StorageSQLite
		cfg.SQLite.Path = filepath.Join(t.TempDir(), "wf.db")

		s, err := NewStore(ctx, cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &sqlite.Store{}, s)

		tasks, err := s.ListTasks(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewStore(ctx, config.Storage{Type: "etcd"})
		assert.ErrorContains(t, err, "unknown storage type")
	})
}
