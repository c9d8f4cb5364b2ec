package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/scriptgrid/internal/app"
	"github.com/specialistvlad/scriptgrid/internal/tracing"
)

// Settings is the resolved configuration, as read from scriptgrid.yaml.
type Settings struct {
	LogLevel        string         `mapstructure:"log_level" yaml:"log_level"`
	LogFormat       string         `mapstructure:"log_format" yaml:"log_format"`
	Tick            time.Duration  `mapstructure:"tick" yaml:"tick"`
	HealthcheckPort int            `mapstructure:"healthcheck_port" yaml:"healthcheck_port"`
	HistoryPath     string         `mapstructure:"history_path" yaml:"history_path"`
	Tracing         tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Watch           bool           `mapstructure:"watch" yaml:"watch"`
	WatchDebounce   time.Duration  `mapstructure:"watch_debounce" yaml:"watch_debounce"`
}

func (c *command) settings() (Settings, error) {
	var s Settings
	if err := c.v.Unmarshal(&s); err != nil {
		return s, usageError(fmt.Errorf("invalid configuration: %w", err))
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	s.LogFormat = strings.ToLower(s.LogFormat)
	return s, nil
}

func (s Settings) appConfig(paths []string) app.Config {
	return app.Config{
		ProjectPaths:    paths,
		LogFormat:       s.LogFormat,
		LogLevel:        s.LogLevel,
		Tick:            s.Tick,
		HealthcheckPort: s.HealthcheckPort,
		HistoryPath:     s.HistoryPath,
		Tracing:         s.Tracing,
		Watch:           s.Watch,
		WatchDebounce:   s.WatchDebounce,
	}
}
