package turso_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtest/internal/adapters/turso"
)

func TestOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "abtest.db")

	db, err := turso.Open(context.Background(), turso.Options{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.False(t, db.Replica())
	assert.NoError(t, db.Sync(), "sync is a no-op without a primary")
	assert.FileExists(t, path)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := turso.Open(context.Background(), turso.Options{})
	assert.Error(t, err)
}
