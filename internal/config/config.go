// Package config loads service configuration from an optional TOML file
// overlaid by SNAPNOTE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/bracken-labs/snapnote/internal/core/domain"
)

// Config holds all runtime settings. Precedence, lowest to highest:
// built-in defaults, TOML file, environment variables.
type Config struct {
	// DataDir holds the SQLite database. Empty means ~/.snapnote/data.
	DataDir string `toml:"data_dir" envconfig:"DATA_DIR"`

	// WorkDir holds per-project working directories (clones).
	WorkDir string `toml:"work_dir" envconfig:"WORK_DIR"`

	// SchemaPath optionally overrides the embedded master schema.
	SchemaPath string `toml:"schema_path" envconfig:"SCHEMA_PATH"`

	LogLevel string `toml:"log_level" envconfig:"LOG_LEVEL"`

	// Categorizer thresholds, in non-blank lines.
	SoftCap      int `toml:"soft_cap" envconfig:"SOFT_CAP"`
	GodThreshold int `toml:"god_threshold" envconfig:"GOD_THRESHOLD"`
	HardCap      int `toml:"hard_cap" envconfig:"HARD_CAP"`

	MaxWorkers   int           `toml:"max_workers" envconfig:"MAX_WORKERS"`
	RunTimeout   time.Duration `toml:"run_timeout" envconfig:"RUN_TIMEOUT"`
	CloneTimeout time.Duration `toml:"clone_timeout" envconfig:"CLONE_TIMEOUT"`

	WatchDebounce time.Duration `toml:"watch_debounce" envconfig:"WATCH_DEBOUNCE"`

	// GitHubToken raises the API quota for repo metadata. Optional.
	GitHubToken string  `toml:"github_token" envconfig:"GITHUB_TOKEN"`
	GitHubRPS   float64 `toml:"github_rps" envconfig:"GITHUB_RPS"`

	// ListenAddr is the dashboard bind address.
	ListenAddr string `toml:"listen_addr" envconfig:"LISTEN_ADDR"`

	// RecentWindow bounds the "recent activity" metric.
	RecentWindow time.Duration `toml:"recent_window" envconfig:"RECENT_WINDOW"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	limits := domain.DefaultCategoryLimits()
	return &Config{
		LogLevel:      "info",
		SoftCap:       limits.SoftCap,
		GodThreshold:  limits.GodThreshold,
		HardCap:       limits.HardCap,
		MaxWorkers:    4,
		RunTimeout:    10 * time.Minute,
		CloneTimeout:  2 * time.Minute,
		WatchDebounce: 500 * time.Millisecond,
		GitHubRPS:     1,
		ListenAddr:    ":8090",
		RecentWindow:  24 * time.Hour,
	}
}

// Load builds the effective configuration. path may be empty, in which
// case snapnote.toml next to the working directory is used when present.
// Env vars are applied last so deployments can override file settings.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "snapnote.toml"
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// optional file
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := envconfig.Process("SNAPNOTE", cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.WorkDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.WorkDir = filepath.Join(home, ".snapnote", "projects")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	if err := c.Limits().Validate(); err != nil {
		return err
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("%w: max_workers must be at least 1", domain.ErrInvalidInput)
	}
	if c.GitHubRPS <= 0 {
		return fmt.Errorf("%w: github_rps must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// Limits returns the categorizer thresholds.
func (c *Config) Limits() domain.CategoryLimits {
	return domain.CategoryLimits{
		SoftCap:      c.SoftCap,
		GodThreshold: c.GodThreshold,
		HardCap:      c.HardCap,
	}
}
