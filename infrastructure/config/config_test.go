package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFollowsCI(t *testing.T) {
	local := Default(false)
	assert.Equal(t, 1, local.Retries)
	assert.Equal(t, 3, local.Workers)
	assert.False(t, local.FullyParallel)
	assert.Equal(t, 3*time.Minute, local.DefaultTimeout)
	assert.Equal(t, 2*time.Minute, local.DefaultNavigationTimeout)
	assert.Equal(t, 30*time.Second, local.DefaultActionTimeout)
	assert.NoError(t, local.Validate())

	ci := Default(true)
	assert.Equal(t, 2, ci.Retries)
	assert.Equal(t, 1, ci.Workers)
}

func TestLoadConfigLayersFileAndEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	path := filepath.Join(t.TempDir(), "e2e.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine: rod
workers: 2
expect_timeout: 10s
projects: [chromium, firefox]
`), 0o644))
	t.Setenv("E2E_WORKERS", "4")
	t.Setenv("E2E_NAVIGATION_BACKOFF", "750ms")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, EngineRod, cfg.Engine)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 10*time.Second, cfg.ExpectTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.NavigationBackoff)
	assert.Equal(t, []string{"chromium", "firefox"}, cfg.Projects)
	assert.Equal(t, 1, cfg.Retries)
}

func TestLoadConfigUsesCIDefaults(t *testing.T) {
	t.Setenv("CI", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.True(t, cfg.CI)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, 1, cfg.Workers)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("E2E_ENGINE", "netscape")
	t.Setenv("E2E_WORKERS", "0")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown engine")
	assert.Contains(t, err.Error(), "workers must be positive")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
