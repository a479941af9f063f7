package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/task-gateway/internal/config"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultTaskServiceBaseURL, cfg.Upstream.BaseURL)
	assert.Equal(t, config.DefaultMaxRetries, cfg.Upstream.MaxRetries)
	assert.Equal(t, config.DefaultBackoffSchedule(), cfg.Upstream.Backoff)
	assert.Equal(t, config.DefaultServerAddr, cfg.Server.Addr)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
upstream:
  base_url: http://localhost:9000
  max_retries: 1
  backoff: [100ms, 500ms]
  connect_timeout: 2s
server:
  addr: ":9999"
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Upstream.BaseURL)
	assert.Equal(t, 1, cfg.Upstream.MaxRetries)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 500 * time.Millisecond}, cfg.Upstream.Backoff)
	assert.Equal(t, 2*time.Second, cfg.Upstream.ConnectTimeout)
	assert.Equal(t, ":9999", cfg.Server.Addr)

	// Keys the file omits keep their defaults.
	assert.Equal(t, config.DefaultReadTimeout, cfg.Upstream.ReadTimeout)
	assert.Equal(t, config.DefaultMaxConnections, cfg.Upstream.MaxConnections)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("TASK_SERVICE_URL", "http://env-service:1234")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env-service:1234", cfg.Upstream.BaseURL)
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("upstream:\n  connect_timeout: fast\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsNegativeRetries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("upstream:\n  max_retries: -1\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
