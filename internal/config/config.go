// Package config loads HORUS process configuration from the environment
// using struct tags, in the same style the teacher codebase uses for its
// service configuration.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the root process configuration for horusd.
type Config struct {
	Scheduler  SchedulerConfig
	Channel    ChannelConfig
	Logging    LogConfig
	Introspect IntrospectConfig
}

// SchedulerConfig controls the fixed-rate tick loop.
type SchedulerConfig struct {
	TickHz int `envconfig:"HORUS_TICK_HZ" default:"60"`
}

// ChannelConfig sets the slot count and subscriber cap every new topic is
// bound with; there is no per-topic override at bind time.
type ChannelConfig struct {
	DefaultSlots   int `envconfig:"HORUS_CHANNEL_SLOTS" default:"8"`
	DefaultMaxSubs int `envconfig:"HORUS_CHANNEL_MAX_SUBS" default:"16"`
}

// LogConfig controls the process-level zap logger in internal/logging.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"INFO"`
	Development bool   `envconfig:"HORUS_LOG_DEV" default:"false"`
}

// IntrospectConfig controls the read-only HTTP introspection server.
type IntrospectConfig struct {
	Enabled bool   `envconfig:"HORUS_INTROSPECT_ENABLED" default:"true"`
	Addr    string `envconfig:"HORUS_INTROSPECT_ADDR" default:"127.0.0.1:7760"`
}

// Load populates a Config from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment, falling back to
// Default if the environment can't be parsed (e.g. a malformed override).
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the hardcoded configuration horusd starts with absent
// any environment overrides.
func Default() *Config {
	return &Config{
		Scheduler:  SchedulerConfig{TickHz: 60},
		Channel:    ChannelConfig{DefaultSlots: 8, DefaultMaxSubs: 16},
		Logging:    LogConfig{Level: "INFO"},
		Introspect: IntrospectConfig{Enabled: true, Addr: "127.0.0.1:7760"},
	}
}
