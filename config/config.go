// File: config/config.go
// Author: momentics <momentics@gmail.com>
//
// YAML-backed configuration for the fetch tool and embedding applications.
// Values absent from the file keep their defaults; validation rejects
// combinations the scheduler cannot run with.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-dl/downloader"
	"github.com/momentics/hioload-dl/reactor"
)

// Config mirrors the on-disk YAML document.
type Config struct {
	Reactor    ReactorConfig    `yaml:"reactor"`
	Downloader DownloaderConfig `yaml:"downloader"`
	// TargetDir receives downloaded files.
	TargetDir string `yaml:"target_dir"`
}

// ReactorConfig selects and tunes the dispatch loop.
type ReactorConfig struct {
	// Backend is "select" or "epoll".
	Backend string `yaml:"backend"`
	// PollInterval caps one poll wait while periodic transfers exist,
	// e.g. "1ms".
	PollInterval Duration `yaml:"poll_interval"`
}

// DownloaderConfig carries the admission limits and read size.
type DownloaderConfig struct {
	MaxPerDestination int `yaml:"max_per_destination"`
	MaxTotal          int `yaml:"max_total"`
	ChunkSize         int `yaml:"chunk_size"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Reactor: ReactorConfig{
			Backend:      "select",
			PollInterval: Duration(reactor.DefaultPollInterval),
		},
		Downloader: DownloaderConfig{
			MaxPerDestination: downloader.DefaultMaxPerDestination,
			MaxTotal:          downloader.DefaultMaxTotal,
			ChunkSize:         downloader.DefaultChunkSize,
		},
		TargetDir: ".",
	}
}

// LoadFile reads path over a copy of Default, so absent keys keep their
// default values, and validates the result.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the scheduler cannot run with.
func (c Config) Validate() error {
	if _, err := reactor.ParseBackend(c.Reactor.Backend); err != nil {
		return err
	}
	if c.Reactor.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	d := c.Downloader
	if d.MaxPerDestination <= 0 || d.MaxTotal <= 0 {
		return fmt.Errorf("concurrency limits must be positive")
	}
	if d.MaxPerDestination > d.MaxTotal {
		return fmt.Errorf("max_per_destination %d exceeds max_total %d",
			d.MaxPerDestination, d.MaxTotal)
	}
	if d.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.TargetDir == "" {
		return fmt.Errorf("target_dir must not be empty")
	}
	return nil
}

// LoadFromEnv applies HIOLOAD_-prefixed environment overrides in place.
// Unset variables leave the current values alone.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("HIOLOAD_BACKEND"); v != "" {
		c.Reactor.Backend = v
	}
	if v := os.Getenv("HIOLOAD_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse HIOLOAD_POLL_INTERVAL: %w", err)
		}
		c.Reactor.PollInterval = Duration(d)
	}
	if v := os.Getenv("HIOLOAD_MAX_PER_DESTINATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HIOLOAD_MAX_PER_DESTINATION: %w", err)
		}
		c.Downloader.MaxPerDestination = n
	}
	if v := os.Getenv("HIOLOAD_MAX_TOTAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HIOLOAD_MAX_TOTAL: %w", err)
		}
		c.Downloader.MaxTotal = n
	}
	if v := os.Getenv("HIOLOAD_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HIOLOAD_CHUNK_SIZE: %w", err)
		}
		c.Downloader.ChunkSize = n
	}
	if v := os.Getenv("HIOLOAD_TARGET_DIR"); v != "" {
		c.TargetDir = v
	}
	return nil
}

// Build returns the reactor construction parameters named by the config.
func (c ReactorConfig) Build(log *zap.Logger) (reactor.Config, error) {
	b, err := reactor.ParseBackend(c.Backend)
	if err != nil {
		return reactor.Config{}, err
	}
	return reactor.Config{
		Backend:      b,
		PollInterval: time.Duration(c.PollInterval),
		Logger:       log,
	}, nil
}

// Apply fills the tunable fields of a downloader.Config in place, leaving
// the wiring fields (Opener, Logger, Metrics) to the caller.
func (c DownloaderConfig) Apply(dst *downloader.Config) {
	dst.MaxPerDestination = c.MaxPerDestination
	dst.MaxTotal = c.MaxTotal
	dst.ChunkSize = c.ChunkSize
}

// Duration adds "1ms"-style YAML parsing to time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
