package config

import (
	"encoding/json"

	"tickd/internal/history"
	"tickd/pkg/logx"
)

type Config struct {
	Logging LoggingConfig  `json:"logging"`
	History *HistoryConfig `json:"history,omitempty"`

	// Services maps qualified service names ("jobs.heartbeat") to their
	// declarations. The set of names registered with the manager is built
	// from this block once at startup.
	Services map[string]ServiceConfig `json:"services"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console"`
	File    FileLogConfig `json:"file,omitempty"`
}

type FileLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// HistoryConfig mirrors history.Config with string durations so it can live
// in JSON/YAML.
type HistoryConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	MemorySize  int    `json:"memory_size,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// ServiceConfig declares one background service.
//
// Enabled is a pointer so "omitted" (default true) can be told apart from an
// explicit false. Options is an opaque section handed to the service's
// factory unchanged.
type ServiceConfig struct {
	Type    string          `json:"type"`
	Enabled *bool           `json:"enabled,omitempty"`
	Cadence string          `json:"cadence,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
}

func (s ServiceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (c *Config) Logx() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}

func (c *Config) HistoryStore() (history.Config, error) {
	if c.History == nil {
		return history.Config{}, nil
	}
	busy, err := ParseDurationField("history.busy_timeout", c.History.BusyTimeout)
	if err != nil {
		return history.Config{}, err
	}
	return history.Config{
		Driver:      c.History.Driver,
		Path:        c.History.Path,
		MemorySize:  c.History.MemorySize,
		BusyTimeout: busy,
	}, nil
}
