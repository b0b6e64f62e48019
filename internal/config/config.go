// Package config loads runtime settings from ABTEST_* environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/abtest/internal/adapters/otel"
	"github.com/emiliopalmerini/abtest/internal/util"
)

const prefix = "ABTEST"

// Database selects the local database file and, optionally, a Turso primary
// to replicate from.
type Database struct {
	Path      string `envconfig:"DATABASE_PATH"`
	URL       string `envconfig:"DATABASE_URL"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

type Config struct {
	Database Database    `ignored:"true"`
	OTEL     otel.Config `ignored:"true"`

	Alpha           float64       `envconfig:"ALPHA" default:"0.05"`
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ArchiveDir      string        `envconfig:"ARCHIVE_DIR"`
}

// Load reads the environment. The database path defaults to abtest.db in the
// XDG data directory and imported datasets are archived next to it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process(prefix, &cfg.OTEL); err != nil {
		return nil, err
	}
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		dir, err := util.GetXDGDataDir()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = filepath.Join(dir, "abtest.db")
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = filepath.Join(filepath.Dir(cfg.Database.Path), "datasets")
	}
	if cfg.Database.URL != "" && cfg.Database.AuthToken == "" {
		return nil, fmt.Errorf("%s_AUTH_TOKEN is required when %s_DATABASE_URL is set", prefix, prefix)
	}
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return nil, fmt.Errorf("%s_ALPHA must be in (0, 1), got %g", prefix, cfg.Alpha)
	}
	return &cfg, nil
}
