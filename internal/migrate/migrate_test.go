package migrate

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/tursodatabase/go-libsql"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

var testMigrations = fstest.MapFS{
	"001_alpha.up.sql":   {Data: []byte("CREATE TABLE alpha (id INTEGER PRIMARY KEY);")},
	"001_alpha.down.sql": {Data: []byte("DROP TABLE alpha;")},
	"002_beta.up.sql":    {Data: []byte("CREATE TABLE beta (id INTEGER);\nCREATE INDEX idx_beta ON beta(id);")},
	"002_beta.down.sql":  {Data: []byte("DROP INDEX idx_beta; DROP TABLE beta;")},
	"003_gamma.up.sql":   {Data: []byte("CREATE TABLE gamma (id INTEGER);")},
	"README.md":          {Data: []byte("not a migration")},
}

func TestLoad_SortsAndPairs(t *testing.T) {
	r := NewWithFS(nil, testMigrations, quietLogger())

	all, err := r.Load()
	require.NoError(t, err)

	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "DROP TABLE alpha;", all[0].DownSQL)
	assert.Equal(t, 3, all[2].Version)
	assert.Empty(t, all[2].DownSQL)
}

func TestRunner_UpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	r := NewWithFS(db, testMigrations, quietLogger())

	applied, err := r.To(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.True(t, tableExists(t, db, "beta"))
	assert.False(t, tableExists(t, db, "gamma"))

	version, dirty, err := r.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.False(t, dirty)

	applied, err = r.To(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.False(t, tableExists(t, db, "alpha"))

	version, _, err = r.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}

func TestRunner_UpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewWithFS(openDB(t), testMigrations, quietLogger())

	applied, err := r.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	applied, err = r.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestRunner_MissingDownMigration(t *testing.T) {
	ctx := context.Background()
	r := NewWithFS(openDB(t), testMigrations, quietLogger())

	_, err := r.Up(ctx)
	require.NoError(t, err)

	_, err = r.To(ctx, 2)
	assert.ErrorContains(t, err, "no down migration for version 3")
}

func TestRunner_FailedMigrationLeavesDirtyFlag(t *testing.T) {
	ctx := context.Background()
	broken := fstest.MapFS{
		"001_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"002_broken.up.sql": {Data: []byte("CREATE TABLE ;")},
	}
	r := NewWithFS(openDB(t), broken, quietLogger())

	_, err := r.Up(ctx)
	require.Error(t, err)

	version, dirty, err := r.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.True(t, dirty)

	_, err = r.Up(ctx)
	assert.ErrorContains(t, err, "dirty state")
}

func TestRunAll_EmbeddedSchema(t *testing.T) {
	db := openDB(t)

	require.NoError(t, RunAll(context.Background(), db))

	for _, table := range []string{"experiments", "trial_records", "report_runs"} {
		assert.True(t, tableExists(t, db, table), table)
	}
}

func TestSplitSQL(t *testing.T) {
	got := SplitSQL("CREATE TABLE a (x INT);\n\n  ;CREATE TABLE b (y INT);  \n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, got)
}
