package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "file", cfg.Data.Source)
	assert.Equal(t, 5*time.Second, cfg.Models.Timeout)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PREDICT_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.Models.Timeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  source: sql\ndatabase:\n  driver: sqlite\n  url: file:test.db\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.Data.Source)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DATA_SOURCE", "sql")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("DATA_SOURCE", "file")
	t.Setenv("GIN_MODE", "chaos")
	_, err = Load()
	assert.Error(t, err)
}
