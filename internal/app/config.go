package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/scriptgrid/internal/runner"
	"github.com/specialistvlad/scriptgrid/internal/tracing"
	"github.com/specialistvlad/scriptgrid/internal/watcher"
)

// ErrInvalidConfig is returned by NewConfig for unusable settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectPaths []string // hcl files or directories

	LogFormat       string
	LogLevel        string
	Tick            time.Duration
	HealthcheckPort int
	// HistoryPath is the SQLite file runs are recorded in. Empty disables history.
	HistoryPath string
	Tracing     tracing.Config

	Watch         bool
	WatchDebounce time.Duration
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ProjectPaths) == 0 {
		return nil, fmt.Errorf("%w: at least one project path is required", ErrInvalidConfig)
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("%w: log format must be 'text' or 'json', got '%s'", ErrInvalidConfig, cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, fmt.Errorf("%w: log level must be 'debug', 'info', 'warn' or 'error', got '%s'", ErrInvalidConfig, cfg.LogLevel)
	}
	if cfg.Tick < 0 || cfg.WatchDebounce < 0 {
		return nil, fmt.Errorf("%w: durations cannot be negative", ErrInvalidConfig)
	}
	if cfg.Tick == 0 {
		cfg.Tick = runner.DefaultInterval
	}
	if cfg.WatchDebounce == 0 {
		cfg.WatchDebounce = watcher.DefaultDebounce
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("%w: healthcheck port %d out of range", ErrInvalidConfig, cfg.HealthcheckPort)
	}
	return &cfg, nil
}
