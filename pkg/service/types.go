package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/modzero/timers-go/pkg/clock"
	"github.com/modzero/timers-go/pkg/log"
)

// Service errors.
var (
	ErrBusy          = errors.New("too many running timers")
	ErrClosed        = errors.New("service closed")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Default configuration values.
const (
	DefaultTickRate   = 60
	DefaultMaxRunning = 1024

	// MaxTickRate bounds TickRate.
	MaxTickRate = 1000
)

// Config configures a Service.
type Config struct {
	// TickRate is how many times per second a running timer is ticked.
	TickRate int

	// MaxRunning is the maximum number of concurrent tick tasks.
	MaxRunning int

	// Clock is the time source for timer transitions.
	// If nil, the real clock is used.
	Clock clock.Clock

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// EventLogger receives a record of every command and tick outcome.
	// If nil, events are not recorded.
	EventLogger log.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TickRate:   DefaultTickRate,
		MaxRunning: DefaultMaxRunning,
	}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.TickRate <= 0 || c.TickRate > MaxTickRate {
		return ErrInvalidConfig
	}
	if c.MaxRunning <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// TickPeriod returns the interval between two ticks.
func (c *Config) TickPeriod() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(c.TickRate)
}
