package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapnote.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Point at a nonexistent file so a stray snapnote.toml in the
	// working directory cannot leak into the test.
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1500, cfg.SoftCap)
	assert.Equal(t, 4000, cfg.GodThreshold)
	assert.Equal(t, 5000, cfg.HardCap)
	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout)
	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.NotEmpty(t, cfg.WorkDir)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
soft_cap = 800
max_workers = 2
run_timeout = "5m0s"
listen_addr = ":9999"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 800, cfg.SoftCap)
	assert.Equal(t, 2, cfg.MaxWorkers)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	// Untouched keys keep their defaults.
	assert.Equal(t, 4000, cfg.GodThreshold)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `log_level = "debug"`)
	t.Setenv("SNAPNOTE_LOG_LEVEL", "warn")
	t.Setenv("SNAPNOTE_MAX_WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 8, cfg.MaxWorkers)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, `log_level = [broken`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadRejectsInvalidLimits(t *testing.T) {
	path := writeConfig(t, `
soft_cap = 5000
god_threshold = 4000
hard_cap = 3000
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MaxWorkers = 0
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)

	cfg = DefaultConfig()
	cfg.GitHubRPS = 0
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)
}

func TestLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SoftCap = 10

	limits := cfg.Limits()
	assert.Equal(t, 10, limits.SoftCap)
	assert.Equal(t, cfg.HardCap, limits.HardCap)
}
