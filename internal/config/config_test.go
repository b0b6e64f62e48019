package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dataHome, "abtest", "abtest.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dataHome, "abtest", "datasets"), cfg.ArchiveDir)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 0.05, cfg.Alpha)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ABTEST_DATABASE_PATH", "/tmp/ab.db")
	t.Setenv("ABTEST_DATABASE_URL", "libsql://ab.turso.io")
	t.Setenv("ABTEST_AUTH_TOKEN", "secret")
	t.Setenv("ABTEST_OTEL_ENABLED", "true")
	t.Setenv("ABTEST_OTEL_ENDPOINT", "localhost:4317")
	t.Setenv("ABTEST_OTEL_INSECURE", "1")
	t.Setenv("ABTEST_ALPHA", "0.01")
	t.Setenv("ABTEST_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ab.db", cfg.Database.Path)
	assert.Equal(t, "/tmp/datasets", cfg.ArchiveDir)
	assert.Equal(t, "libsql://ab.turso.io", cfg.Database.URL)
	assert.Equal(t, "secret", cfg.Database.AuthToken)
	assert.True(t, cfg.OTEL.Enabled)
	assert.True(t, cfg.OTEL.Insecure)
	assert.Equal(t, "localhost:4317", cfg.OTEL.Endpoint)
	assert.Equal(t, 0.01, cfg.Alpha)
	assert.Equal(t, ":9090", cfg.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"alpha too large", map[string]string{"ABTEST_ALPHA": "1"}},
		{"alpha not a number", map[string]string{"ABTEST_ALPHA": "five percent"}},
		{"replica without token", map[string]string{"ABTEST_DATABASE_URL": "libsql://ab.turso.io"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ABTEST_DATABASE_PATH", filepath.Join(t.TempDir(), "ab.db"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
