// Package config defines game configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults.
//   - Load layers defaults, an optional YAML file and JOKENPO_ env vars.
//   - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Ranking backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// RankingBackend selects the ranking store: "file" or "sqlite".
	RankingBackend string `koanf:"ranking_backend"`

	// RankingPath is the flat "<name>: <score>" ranking file.
	RankingPath string `koanf:"ranking_path"`

	// RankingDBPath is the SQLite database used by the sqlite backend.
	RankingDBPath string `koanf:"ranking_db_path"`

	// RankingLimit caps displayed ranking rows; 0 shows all.
	RankingLimit int `koanf:"ranking_limit"`

	// RoundLogPath receives one line per round; truncated on each new match.
	RoundLogPath string `koanf:"round_log_path"`

	// WinThreshold ends a match once either score reaches it.
	WinThreshold int `koanf:"win_threshold"`

	// RevealDelayMS is the pause before the opponent item and again before the outcome.
	RevealDelayMS int `koanf:"reveal_delay_ms"`

	// Seed makes opponent draws reproducible; 0 seeds from the clock.
	Seed int64 `koanf:"seed"`

	// MetricsPath, when set, receives a Prometheus textfile dump on exit.
	MetricsPath string `koanf:"metrics_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		RankingBackend: BackendFile,
		RankingPath:    "ranking.txt",
		RankingDBPath:  "ranking.db",
		RankingLimit:   10,
		RoundLogPath:   "rounds.txt",
		WinThreshold:   10,
		RevealDelayMS:  1000,
	}
}

// RevealDelay returns RevealDelayMS as a duration.
func (c *Config) RevealDelay() time.Duration {
	return time.Duration(c.RevealDelayMS) * time.Millisecond
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch c.RankingBackend {
	case BackendFile:
		if c.RankingPath == "" {
			return fmt.Errorf("%w: ranking_path must not be empty", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.RankingDBPath == "" {
			return fmt.Errorf("%w: ranking_db_path must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown ranking_backend %q", ErrInvalidConfig, c.RankingBackend)
	}
	if c.RoundLogPath == "" {
		return fmt.Errorf("%w: round_log_path must not be empty", ErrInvalidConfig)
	}
	if c.WinThreshold <= 0 {
		return fmt.Errorf("%w: win_threshold must be positive", ErrInvalidConfig)
	}
	if c.RevealDelayMS < 0 {
		return fmt.Errorf("%w: reveal_delay_ms must not be negative", ErrInvalidConfig)
	}
	if c.RankingLimit < 0 {
		return fmt.Errorf("%w: ranking_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
