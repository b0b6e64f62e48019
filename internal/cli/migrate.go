package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtest/internal/adapters/turso"
	"github.com/emiliopalmerini/abtest/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  abtest migrate      # Run all pending migrations
  abtest migrate 1    # Migrate to version 1
  abtest migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid version %q", args[0]))
		}
		target = v
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := turso.Open(ctx, turso.Options{
		Path:      cfg.Database.Path,
		URL:       cfg.Database.URL,
		AuthToken: cfg.Database.AuthToken,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	runner := migrate.New(db.DB, slog.Default())
	current, _, err := runner.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", current)

	applied, err := runner.To(ctx, target)
	if err != nil {
		return err
	}
	if applied == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
		return nil
	}

	version, _, err := runner.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get new version: %w", err)
	}
	if err := db.Sync(); err != nil {
		slog.Warn("replica sync failed", "error", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated to version %d (%d applied)\n", version, applied)
	return nil
}
