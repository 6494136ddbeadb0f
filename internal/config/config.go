// Package config loads service configuration from an optional YAML file.
// Missing fields keep their defaults; environment overrides stay in the
// command mains.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// #region types

// Config holds the advisory service settings.
type Config struct {
	// TimeoutMS bounds each peer endpoint attempt.
	TimeoutMS int `yaml:"timeout_ms"`
	// SoftmaxTemperature scales confidences before weighting.
	SoftmaxTemperature float64 `yaml:"softmax_temperature"`

	Audit AuditConfig `yaml:"audit"`
	Hub   HubConfig   `yaml:"hub"`
}

// AuditConfig configures the advisory log.
type AuditConfig struct {
	DBPath   string `yaml:"db_path"`
	Capacity int    `yaml:"capacity"`
}

// HubConfig configures the state hub and its HTTP surface.
type HubConfig struct {
	Listen     string `yaml:"listen"`
	EventCap   int    `yaml:"event_cap"`
	ControlCap int    `yaml:"control_cap"`
}

// #endregion types

// #region load

// Default returns the standard configuration.
func Default() Config {
	return Config{
		TimeoutMS:          5000,
		SoftmaxTemperature: 1.0,
		Audit: AuditConfig{
			DBPath:   "advisory_audit.db",
			Capacity: 500,
		},
		Hub: HubConfig{
			Listen:     ":8090",
			EventCap:   512,
			ControlCap: 256,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// Timeout returns the per-endpoint timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// #endregion load
