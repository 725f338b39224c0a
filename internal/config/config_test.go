package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Analysis.BaseURL)
	assert.True(t, cfg.History.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
analysis:
  baseURL: http://analysis:8000
  timeout: 30s
runs:
  maxRuns: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://analysis:8000", cfg.Analysis.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, 5, cfg.Runs.MaxRuns)
	// Untouched sections keep their defaults.
	assert.Equal(t, "200M", cfg.Server.BodyLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_PORT", "7001")
	t.Setenv("ANALYSIS_SERVICE_URL", "http://override:9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "http://override:9000", cfg.Analysis.BaseURL)
}

func TestLoad_InvalidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestServerAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Server.Port = 8123
	assert.Equal(t, "127.0.0.1:8123", cfg.ServerAddr())
}
