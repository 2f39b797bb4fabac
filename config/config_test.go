package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Listen)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, 320.0, cfg.Layout.LevelSpacing)
	assert.True(t, cfg.Editable("pending"))
	assert.False(t, cfg.Editable("running"))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfig(t, `
server:
  listen: ":8080"
log:
  debug: true
storage:
  type: sqlite
  sqlite:
    path: /var/lib/taskflow.db
layout:
  level_spacing: 400
  intra_level_spacing: 200
  base_offset: 0
  chain_x: 100
  chain_spacing: 120
editor:
  editable_statuses: [pending, waiting_approval]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, "/var/lib/taskflow.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 400.0, cfg.Layout.LevelSpacing)
	assert.Equal(t, 0.0, cfg.Layout.BaseOffset)
	assert.True(t, cfg.Editable("waiting_approval"))
}

func TestLoad_DatabaseURLSelectsPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/taskflow")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Type)
	assert.Equal(t, "postgres://localhost/taskflow", cfg.Storage.Postgres.URL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load(writeConfig(t, "storage:\n  type: redis\n"))
	assert.ErrorContains(t, err, "unknown storage type")

	_, err = Load(writeConfig(t, "storage:\n  type: postgres\n"))
	assert.ErrorContains(t, err, "storage.postgres.url")

	_, err = Load(writeConfig(t, "layout:\n  level_spacing: -1\n"))
	assert.ErrorContains(t, err, "layout spacings")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load(writeConfig(t, "server: [\n"))
	assert.ErrorContains(t, err, "parsing config file")
}
