package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fingerprint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, HostNative, cfg.Host.Kind)
	assert.Equal(t, 5*time.Second, cfg.Collector.ProbeTimeout)
	assert.True(t, cfg.Host.Browser.Headless)
	require.NoError(t, cfg.Validate())

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, SinkNone, cfg.Sink.Kind)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  console: true
collector:
  probe_timeout: 750ms
  salt: tenant-a
  skip_probes: [fonts, audio]
host:
  kind: static
  profile: devices/desktop.yaml
sink:
  kind: http
  url: https://collect.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.Collector.ProbeTimeout)
	assert.Equal(t, []string{"fonts", "audio"}, cfg.Collector.SkipProbes)
	assert.Equal(t, HostStatic, cfg.Host.Kind)
	assert.Equal(t, "https://collect.example.com", cfg.Sink.URL)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
	require.NoError(t, cfg.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "collector: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"FINGERPRINT_LOG_LEVEL":   "warn",
		"FINGERPRINT_SALT":        "from-env",
		"FINGERPRINT_BROWSER_URL": "ws://127.0.0.1:9222/devtools/browser/x",
		"FINGERPRINT_NATS_URL":    "nats://127.0.0.1:4222",
	}

	cfg := Default()
	cfg.Sink.Kind = SinkNATS
	cfg.applyEnvOverrides(func(k string) string { return env[k] })

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Collector.Salt)
	assert.Equal(t, env["FINGERPRINT_BROWSER_URL"], cfg.Host.Browser.ControlURL)
	assert.Equal(t, env["FINGERPRINT_NATS_URL"], cfg.Server.NATSURL)
	assert.Equal(t, env["FINGERPRINT_NATS_URL"], cfg.Sink.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"timeout", func(c *Config) { c.Collector.ProbeTimeout = -time.Second }, "invalid probe timeout"},
		{"host", func(c *Config) { c.Host.Kind = "emulator" }, "invalid host kind"},
		{"sink", func(c *Config) { c.Sink.Kind = "kafka" }, "invalid sink kind"},
		{"sink url", func(c *Config) { c.Sink.Kind = SinkHTTP }, "requires a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	_, err = NewLogger(LogConfig{Level: "chatty"})
	assert.Error(t, err)

	logger, err = NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
