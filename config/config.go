// Package config loads the YAML configuration of the taskflow server.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/taskflow"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the server configuration.
type Config struct {
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`

	Log struct {
		Debug bool   `yaml:"debug"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	Storage Storage `yaml:"storage"`

	Layout taskflow.LayoutOptions `yaml:"layout"`

	Editor struct {
		// EditableStatuses lists the deployment statuses whose workflow may
		// be edited.
		EditableStatuses []string `yaml:"editable_statuses"`
	} `yaml:"editor"`
}

// Storage selects and configures the workflow store.
type Storage struct {
	Type   string `yaml:"type"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Listen = ":3000"
	cfg.Storage.Type = StorageMemory
	cfg.Storage.SQLite.Path = "taskflow.db"
	cfg.Layout = taskflow.DefaultLayoutOptions()
	cfg.Editor.EditableStatuses = []string{"pending"}
	return cfg
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Storage.Postgres.URL = url
		if path == "" {
			cfg.Storage.Type = StoragePostgres
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return errors.New("server.listen is required")
	}
	switch c.Storage.Type {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			return errors.New("storage.sqlite.path is required")
		}
	case StoragePostgres:
		if c.Storage.Postgres.URL == "" {
			return errors.New("storage.postgres.url is required (or set DATABASE_URL)")
		}
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}
	if c.Layout.LevelSpacing <= 0 || c.Layout.IntraLevelSpacing <= 0 || c.Layout.ChainSpacing <= 0 {
		return errors.New("layout spacings must be positive")
	}
	return nil
}

// Editable reports whether a workflow in the given deployment status may
// be edited.
func (c *Config) Editable(status string) bool {
	return slices.Contains(c.Editor.EditableStatuses, status)
}
