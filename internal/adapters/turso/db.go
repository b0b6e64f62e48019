package turso

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tursodatabase/go-libsql"
)

// DB is a libsql connection. When opened as an embedded replica it keeps the
// connector so local writes can be pushed to the primary with Sync.
type DB struct {
	*sql.DB
	connector *libsql.Connector
}

// Options selects between a plain local database file and an embedded replica
// of a remote Turso primary.
type Options struct {
	Path      string
	URL       string
	AuthToken string
}

// Open opens the database described by opts and verifies the connection.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db := &DB{}
	if opts.URL != "" {
		connector, err := libsql.NewEmbeddedReplicaConnector(opts.Path, opts.URL, libsql.WithAuthToken(opts.AuthToken))
		if err != nil {
			return nil, fmt.Errorf("failed to create embedded replica: %w", err)
		}
		db.connector = connector
		db.DB = sql.OpenDB(connector)
	} else {
		sqlDB, err := sql.Open("libsql", "file:"+opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.DB = sqlDB
	}

	// SQLite allows one writer; a single connection also keeps per-connection
	// pragmas such as foreign_keys in effect.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// Replica reports whether the database syncs with a remote primary.
func (d *DB) Replica() bool {
	return d.connector != nil
}

// Sync pulls and pushes frames to the primary. It is a no-op for local files.
func (d *DB) Sync() error {
	if d.connector == nil {
		return nil
	}
	if _, err := d.connector.Sync(); err != nil {
		return fmt.Errorf("failed to sync replica: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	err := d.DB.Close()
	if d.connector != nil {
		if cerr := d.connector.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
