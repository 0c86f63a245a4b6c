// Package config loads and validates the widgetd configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/provekit/widget/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "widget.json"

	// DefaultPort is the default server port.
	DefaultPort = 7120

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMetricsAddr is the default metrics listen address.
	DefaultMetricsAddr = ""

	// DefaultMaxSessions is the default cap on concurrent sessions.
	DefaultMaxSessions = 256

	// DefaultMaxEventQueue is the default per-session event queue
	// depth.
	DefaultMaxEventQueue = 64

	// DefaultWriteTimeoutMS is the default websocket write timeout.
	DefaultWriteTimeoutMS = 10000

	// DefaultTaskWorkers is the default task queue worker count.
	DefaultTaskWorkers = 4
)

// Config represents the complete widget.json configuration.
type Config struct {
	// Name is the deployment name, used in logs and metrics labels.
	Name string `json:"name,omitempty"`

	// Host is the listen host.
	Host string `json:"host,omitempty"`

	// Port is the listen port.
	Port int `json:"port,omitempty"`

	// MetricsAddr is a separate listen address for /metrics. Empty
	// serves metrics on the main listener.
	MetricsAddr string `json:"metrics_addr,omitempty"`

	// Codec is the default frame codec ("json" or "msgpack").
	Codec string `json:"codec,omitempty"`

	// Session contains per-session limits.
	Session SessionConfig `json:"session,omitempty"`

	// Tasks contains task queue configuration.
	Tasks TasksConfig `json:"tasks,omitempty"`
}

// SessionConfig contains session limits.
type SessionConfig struct {
	// MaxSessions caps concurrent sessions.
	MaxSessions int `json:"max_sessions,omitempty"`

	// MaxEventQueue caps queued inbound frames per session.
	MaxEventQueue int `json:"max_event_queue,omitempty"`

	// WriteTimeoutMS bounds websocket writes, in milliseconds.
	WriteTimeoutMS int `json:"write_timeout_ms,omitempty"`
}

// TasksConfig contains task queue configuration.
type TasksConfig struct {
	// Workers is the worker pool size.
	Workers int `json:"workers,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Host:  DefaultHost,
		Port:  DefaultPort,
		Codec: "json",
		Session: SessionConfig{
			MaxSessions:    DefaultMaxSessions,
			MaxEventQueue:  DefaultMaxEventQueue,
			WriteTimeoutMS: DefaultWriteTimeoutMS,
		},
		Tasks: TasksConfig{
			Workers: DefaultTaskWorkers,
		},
	}
}

// Load reads widget.json from dir, applying defaults for absent
// fields. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	return LoadFrom(filepath.Join(dir, ConfigFileName))
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.FromError(err, "W301")
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.FromError(err, "W301")
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Codec == "" {
		cfg.Codec = "json"
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = DefaultMaxSessions
	}
	if cfg.Session.MaxEventQueue == 0 {
		cfg.Session.MaxEventQueue = DefaultMaxEventQueue
	}
	if cfg.Session.WriteTimeoutMS == 0 {
		cfg.Session.WriteTimeoutMS = DefaultWriteTimeoutMS
	}
	if cfg.Tasks.Workers == 0 {
		cfg.Tasks.Workers = DefaultTaskWorkers
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("W301").WithDetail("port must be between 0 and 65535")
	}
	if c.Codec != "json" && c.Codec != "msgpack" {
		return errors.New("W301").WithDetail("codec must be \"json\" or \"msgpack\"")
	}
	if c.Session.MaxSessions < 1 {
		return errors.New("W301").WithDetail("session.max_sessions must be at least 1")
	}
	if c.Session.MaxEventQueue < 1 {
		return errors.New("W301").WithDetail("session.max_event_queue must be at least 1")
	}
	if c.Tasks.Workers < 1 {
		return errors.New("W301").WithDetail("tasks.workers must be at least 1")
	}
	return nil
}

// Save writes the configuration to dir/widget.json.
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), append(data, '\n'), 0o644)
}
