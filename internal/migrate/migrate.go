// Package migrate applies the embedded schema migrations to a libsql database.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/abtest/migrations"
)

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Migration is one schema step with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Runner tracks the schema version in schema_migrations and moves it up or down.
type Runner struct {
	db     *sql.DB
	source fs.FS
	logger *slog.Logger
}

// New returns a Runner over the embedded migrations.
func New(db *sql.DB, logger *slog.Logger) *Runner {
	return NewWithFS(db, migrations.FS, logger)
}

func NewWithFS(db *sql.DB, source fs.FS, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, source: source, logger: logger}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// Version returns the applied version and whether a previous run stopped halfway.
func (r *Runner) Version(ctx context.Context) (int, bool, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var version, dirty int
	err := r.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

func (r *Runner) setVersion(ctx context.Context, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// Load reads every NNN_name.up.sql file, pairs it with its down file and
// sorts the result by version.
func (r *Runner) Load() ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(r.source, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := upPattern.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("invalid migration version in %s: %w", p, err)
		}

		upSQL, err := fs.ReadFile(r.source, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		downSQL, err := fs.ReadFile(r.source, strings.TrimSuffix(p, ".up.sql")+".down.sql")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read down migration for %s: %w", p, err)
		}

		result = append(result, Migration{
			Version: version,
			Name:    matches[2],
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

// apply runs one migration, leaving the dirty flag set if a statement fails.
func (r *Runner) apply(ctx context.Context, m Migration, up bool) error {
	direction := "up"
	body := m.UpSQL
	target := m.Version
	if !up {
		direction = "down"
		body = m.DownSQL
		target = m.Version - 1
	}

	r.logger.Info("applying migration", "direction", direction, "version", m.Version, "name", m.Name)

	if err := r.setVersion(ctx, m.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	for _, stmt := range SplitSQL(body) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", m.Version, direction, err, stmt)
		}
	}

	if err := r.setVersion(ctx, target, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

// SplitSQL splits a script on semicolons and drops empty statements.
// Migration files must not contain semicolons inside literals or comments.
func SplitSQL(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Up applies every pending migration and returns how many ran.
func (r *Runner) Up(ctx context.Context) (int, error) {
	return r.To(ctx, -1)
}

// To moves the schema to target, migrating up or down as needed. A negative
// target means the latest version.
func (r *Runner) To(ctx context.Context, target int) (int, error) {
	current, dirty, err := r.Version(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database is in dirty state at version %d", current)
	}

	all, err := r.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}
	if target < 0 {
		target = 0
		if len(all) > 0 {
			target = all[len(all)-1].Version
		}
	}

	applied := 0
	switch {
	case target > current:
		for _, m := range all {
			if m.Version <= current || m.Version > target {
				continue
			}
			if err := r.apply(ctx, m, true); err != nil {
				return applied, err
			}
			applied++
		}
	case target < current:
		for i := len(all) - 1; i >= 0; i-- {
			m := all[i]
			if m.Version > current || m.Version <= target {
				continue
			}
			if m.DownSQL == "" {
				return applied, fmt.Errorf("no down migration for version %d", m.Version)
			}
			if err := r.apply(ctx, m, false); err != nil {
				return applied, err
			}
			applied++
		}
	}

	if applied == 0 {
		r.logger.Debug("schema up to date", "version", current)
	} else {
		r.logger.Info("schema migrated", "from", current, "to", target, "applied", applied)
	}
	return applied, nil
}

// RunAll applies every pending embedded migration.
func RunAll(ctx context.Context, db *sql.DB) error {
	_, err := New(db, slog.Default()).Up(ctx)
	return err
}
