// Package config provides configuration file support for the timers CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modzero/timers-go/pkg/service"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the CLI configuration.
type Config struct {
	TickRate   int               `yaml:"tick_rate"`
	MaxRunning int               `yaml:"max_running"`
	Logging    LoggingConfig     `yaml:"logging"`
	EventLog   string            `yaml:"event_log,omitempty"`
	Presets    map[string]string `yaml:"presets,omitempty"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		TickRate:   service.DefaultTickRate,
		MaxRunning: service.DefaultMaxRunning,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Presets: map[string]string{
			"tea":   "3m",
			"pasta": "9m",
			"egg":   "7m",
		},
	}
}

// Load loads configuration from path.
// Returns default config if the file doesn't exist. Keys missing from the
// file keep their defaults; a presets key replaces the default presets.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// A presets key in the file replaces the built-in presets.
	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, ok := keys["presets"]; ok {
		cfg.Presets = nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if c.TickRate <= 0 || c.TickRate > service.MaxTickRate {
		return fmt.Errorf("%w: tick_rate must be between 1 and %d", ErrInvalidConfig, service.MaxTickRate)
	}
	if c.MaxRunning <= 0 {
		return fmt.Errorf("%w: max_running must be positive", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown logging format %q", ErrInvalidConfig, c.Logging.Format)
	}
	for _, name := range c.PresetNames() {
		if _, err := c.Preset(name); err != nil {
			return err
		}
	}
	return nil
}

// Preset returns the duration of the named preset.
func (c *Config) Preset(name string) (time.Duration, error) {
	raw, ok := c.Presets[name]
	if !ok {
		return 0, fmt.Errorf("unknown preset %q", name)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: preset %q: %v", ErrInvalidConfig, name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: preset %q must be positive", ErrInvalidConfig, name)
	}
	return d, nil
}

// PresetNames returns the preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServiceConfig converts the file settings into a service configuration.
// Logger and EventLogger are left for the caller to set.
func (c *Config) ServiceConfig() service.Config {
	cfg := service.DefaultConfig()
	cfg.TickRate = c.TickRate
	cfg.MaxRunning = c.MaxRunning
	return cfg
}

// NewLogger builds a slog logger writing to w according to the logging
// settings.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: logging level %q", ErrInvalidConfig, s)
	}
	return level, nil
}
