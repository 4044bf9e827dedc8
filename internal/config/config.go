// Package config loads schedd's YAML configuration file, applying the same
// defaults-then-overlay pattern as the source: build a Config populated
// with defaults, then let yaml.Unmarshal overwrite only the fields present
// in the file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultWorkerCount and DefaultTickInterval mirror scheduler.Default*, kept
// separate so this package has no dependency on internal/scheduler.
const (
	DefaultWorkerCount  = 4
	DefaultTickInterval = time.Second
	DefaultListenAddr   = "127.0.0.1:8080"
)

// Config is schedd's top-level configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Transport TransportConfig `yaml:"transport"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// SchedulerConfig controls the worker pool and timer cadence.
type SchedulerConfig struct {
	WorkerCount  int           `yaml:"worker_count"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// TransportConfig controls the update-ingress and diagnostics websocket
// endpoints (internal/transport/ws).
type TransportConfig struct {
	AuthToken           string        `yaml:"auth_token"`
	AllowedOrigins      []string      `yaml:"allowed_origins"`
	DiagnosticsThrottle time.Duration `yaml:"diagnostics_throttle"`
	DiagnosticsSnapshot time.Duration `yaml:"diagnostics_snapshot_interval"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: DefaultListenAddr,
		},
		Scheduler: SchedulerConfig{
			WorkerCount:  DefaultWorkerCount,
			TickInterval: DefaultTickInterval,
		},
		Transport: TransportConfig{
			DiagnosticsThrottle: 100 * time.Millisecond,
			DiagnosticsSnapshot: 5 * time.Second,
		},
	}
}

// Load reads and parses the YAML file at path, overlaying it onto the
// defaults. Fields absent from the file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults, rather than an
// error, when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	return Load(path)
}

// GenerateToken returns a random hex-encoded auth token suitable for
// TransportConfig.AuthToken.
func GenerateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("config: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
