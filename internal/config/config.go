// Package config loads daemon settings from a TOML file, falling back to defaults.
// Credentials and project details are not here; they live in the store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that decodes from strings like "15s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds all daemon configuration.
type Config struct {
	Interval          Duration `toml:"interval"`
	InactivityTimeout Duration `toml:"inactivity_timeout"`
	StorePath         string   `toml:"store_path"`
	HTTPAddr          string   `toml:"http_addr"`
	EasyEDAVersion    string   `toml:"easyeda_version"`

	Host    HostConfig    `toml:"host"`
	Watch   WatchConfig   `toml:"watch"`
	Journal JournalConfig `toml:"journal"`
}

// HostConfig points at the MQTT broker the editor extension publishes to.
type HostConfig struct {
	Broker      string `toml:"broker"`
	TopicPrefix string `toml:"topic_prefix"`
}

// WatchConfig enables filesystem activity detection for a project directory.
type WatchConfig struct {
	Dir string `toml:"dir"`
}

// JournalConfig enables mirroring heartbeats to Elasticsearch.
type JournalConfig struct {
	Addresses []string `toml:"addresses"`
	Index     string   `toml:"index"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:          Duration{15 * time.Second},
		InactivityTimeout: Duration{30 * time.Second},
		StorePath:         filepath.Join(Dir(), "state.db"),
		HTTPAddr:          "127.0.0.1:8765",
		EasyEDAVersion:    "2.2.34.6",
		Host: HostConfig{
			Broker:      "tcp://127.0.0.1:1883",
			TopicPrefix: "easyeda/wakatime",
		},
		Journal: JournalConfig{
			Index: "easyeda-heartbeats",
		},
	}
}

// Dir returns the easyeda-wakatime config directory path.
// Uses $XDG_CONFIG_HOME/easyeda-wakatime if set, otherwise ~/.config/easyeda-wakatime.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "easyeda-wakatime")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "easyeda-wakatime")
}

// Load reads config from path, or from the standard paths when path is empty.
// A missing file is not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	paths := configPaths()
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if path != "" {
				return cfg, fmt.Errorf("config %s: %w", p, err)
			}
			continue
		}
		if _, err := toml.DecodeFile(p, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", p, err)
		}
		break
	}

	cfg.StorePath = expandHome(cfg.StorePath)
	cfg.Watch.Dir = expandHome(cfg.Watch.Dir)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the scheduler cannot run with.
func (c Config) Validate() error {
	if c.Interval.Duration <= 0 {
		return errors.New("interval must be positive")
	}
	if c.InactivityTimeout.Duration <= 0 {
		return errors.New("inactivity_timeout must be positive")
	}
	return nil
}

// ThresholdBelowInterval reports whether the inactivity timeout is shorter
// than the tick interval, in which case short bursts of activity can be missed.
func (c Config) ThresholdBelowInterval() bool {
	return c.InactivityTimeout.Duration < c.Interval.Duration
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "easyeda-wakatime", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "easyeda-wakatime", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
