package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/adapters/otel"
	"github.com/emiliopalmerini/abtest/internal/adapters/storage"
	"github.com/emiliopalmerini/abtest/internal/adapters/turso"
	"github.com/emiliopalmerini/abtest/internal/config"
	"github.com/emiliopalmerini/abtest/internal/experiments"
	"github.com/emiliopalmerini/abtest/internal/migrate"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

// AppContext holds all shared dependencies for commands that touch storage.
type AppContext struct {
	Config   *config.Config
	DB       *turso.DB
	Repos    *turso.Repositories
	Exporter ports.MetricsExporter
	Service  *experiments.Service
	Logger   *slog.Logger
}

// NewAppContext opens the database, applies pending migrations and builds the
// experiment service. A failing OTEL exporter degrades to a no-op.
func NewAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	logger := slog.Default()

	db, err := turso.Open(ctx, turso.Options{
		Path:      cfg.Database.Path,
		URL:       cfg.Database.URL,
		AuthToken: cfg.Database.AuthToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Debug("database opened", "path", cfg.Database.Path, "replica", db.Replica())
	if db.Replica() {
		if err := db.Sync(); err != nil {
			logger.Warn("initial replica sync failed", "error", err)
		}
	}
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var exporter ports.MetricsExporter = otel.NewNoOpExporter()
	if cfg.OTEL.Enabled {
		e, err := otel.NewExporter(ctx, cfg.OTEL)
		if err != nil {
			logger.Warn("metrics export disabled", "error", err)
		} else {
			exporter = e
		}
	}

	archive, err := storage.NewDatasetArchive(cfg.ArchiveDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	repos := turso.NewRepositories(db.DB)
	service := experiments.NewService(repos.Experiments, repos.Trials, repos.Reports, exporter, logger).
		WithArchive(archive)
	return &AppContext{
		Config:   cfg,
		DB:       db,
		Repos:    repos,
		Exporter: exporter,
		Service:  service,
		Logger:   logger,
	}, nil
}

// Close flushes metrics, pushes local writes to the primary and closes the
// database.
func (a *AppContext) Close(ctx context.Context) error {
	if err := a.Exporter.Close(ctx); err != nil {
		a.Logger.Warn("failed to flush metrics", "error", err)
	}
	if err := a.DB.Sync(); err != nil {
		a.Logger.Warn("replica sync failed", "error", err)
	}
	return a.DB.Close()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// withApp runs fn with a ready AppContext and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *AppContext) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := NewAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(ctx); err != nil {
			app.Logger.Warn("failed to close database", "error", err)
		}
	}()
	return fn(ctx, app)
}

// resolveAlpha prefers an explicit --alpha over the configured default.
func resolveAlpha(cmd *cobra.Command, cfg *config.Config) (float64, error) {
	alpha := cfg.Alpha
	if cmd.Flags().Changed("alpha") {
		alpha = alphaFlag
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("alpha must be in (0, 1), got %g", alpha))
	}
	return alpha, nil
}
