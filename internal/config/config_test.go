package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./mediavault.db", cfg.Database.Path)
	assert.Equal(t, time.Hour, cfg.Schedule.ParseRefreshInterval())
	assert.Equal(t, 30*time.Second, cfg.Feed.ParseTimeout())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Feed.Retries)
	assert.Equal(t, 4, cfg.Feed.Concurrency)
	assert.Empty(t, cfg.Log.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/a.db
schedule:
  refresh_interval: 10m
feed:
  timeout: nonsense
server:
  port: 9000
`), 0o644))

	t.Setenv("MEDIAVAULT_PORT", "9100")
	t.Setenv("MEDIAVAULT_LOG_LEVEL", "debug")
	t.Setenv("MEDIAVAULT_LOG_FILE", "/var/log/mediavault.log")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.db", cfg.Database.Path)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.ParseRefreshInterval())
	assert.Equal(t, 30*time.Second, cfg.Feed.ParseTimeout())
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "mediavault/1.0", cfg.Feed.UserAgent)
	assert.Equal(t, "/var/log/mediavault.log", cfg.Log.File)
	assert.Equal(t, 50, cfg.Log.MaxSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
