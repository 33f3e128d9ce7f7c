// Package config loads the fingerprint command's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Host kinds.
const (
	HostStatic  = "static"
	HostNative  = "native"
	HostBrowser = "browser"
)

// Sink kinds.
const (
	SinkNone = "none"
	SinkHTTP = "http"
	SinkNATS = "nats"
)

// Config is the full command configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Collector CollectorConfig `yaml:"collector"`
	Host      HostConfig      `yaml:"host"`
	Sink      SinkConfig      `yaml:"sink"`
	Server    ServerConfig    `yaml:"server"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error, disabled
	Output     string `yaml:"output"`      // stderr, stdout
	TimeFormat string `yaml:"time_format"` // Go layout, empty for RFC3339
	Console    bool   `yaml:"console"`     // human readable instead of JSON
}

// CollectorConfig configures collection sessions.
type CollectorConfig struct {
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	Salt         string        `yaml:"salt"`
	Probes       []string      `yaml:"probes"`
	SkipProbes   []string      `yaml:"skip_probes"`
}

// HostConfig selects and configures the host adapter.
type HostConfig struct {
	Kind       string        `yaml:"kind"`
	Profile    string        `yaml:"profile"`
	StorageDir string        `yaml:"storage_dir"`
	Browser    BrowserConfig `yaml:"browser"`
}

// BrowserConfig configures the browser host.
type BrowserConfig struct {
	ControlURL string `yaml:"control_url"`
	Bin        string `yaml:"bin"`
	Headless   bool   `yaml:"headless"`
	PageURL    string `yaml:"page_url"`
}

// SinkConfig selects where collected records are submitted.
type SinkConfig struct {
	Kind    string `yaml:"kind"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ServerConfig configures the collection endpoint.
type ServerConfig struct {
	Listen  string `yaml:"listen"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Output: "stderr",
		},
		Collector: CollectorConfig{
			ProbeTimeout: 5 * time.Second,
		},
		Host: HostConfig{
			Kind: HostNative,
			Browser: BrowserConfig{
				Headless: true,
			},
		},
		Sink: SinkConfig{
			Kind: SinkNone,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides(os.Getenv)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv("FINGERPRINT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("FINGERPRINT_SALT"); v != "" {
		c.Collector.Salt = v
	}
	if v := getenv("FINGERPRINT_BROWSER_URL"); v != "" {
		c.Host.Browser.ControlURL = v
	}
	if v := getenv("FINGERPRINT_NATS_URL"); v != "" {
		c.Server.NATSURL = v
		if c.Sink.Kind == SinkNATS && c.Sink.URL == "" {
			c.Sink.URL = v
		}
	}
}

// Validate checks the enumerated fields and the fields each kind requires.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if c.Collector.ProbeTimeout < 0 {
		return fmt.Errorf("invalid probe timeout %s", c.Collector.ProbeTimeout)
	}

	hosts := []string{HostStatic, HostNative, HostBrowser}
	if !slices.Contains(hosts, c.Host.Kind) {
		return fmt.Errorf("invalid host kind: %s (valid: %v)", c.Host.Kind, hosts)
	}

	sinks := []string{SinkNone, SinkHTTP, SinkNATS}
	if !slices.Contains(sinks, c.Sink.Kind) {
		return fmt.Errorf("invalid sink kind: %s (valid: %v)", c.Sink.Kind, sinks)
	}
	if c.Sink.Kind != SinkNone && c.Sink.URL == "" {
		return fmt.Errorf("sink %s requires a url", c.Sink.Kind)
	}

	return nil
}

// NewLogger builds a zerolog logger from the log configuration.
func NewLogger(cfg LogConfig) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	var output io.Writer = os.Stderr
	if cfg.Output == "stdout" {
		output = os.Stdout
	}

	timeFormat := time.RFC3339
	if cfg.TimeFormat != "" {
		timeFormat = cfg.TimeFormat
	}

	if cfg.Console {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: timeFormat}
	}
	zerolog.TimeFieldFormat = timeFormat

	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}
