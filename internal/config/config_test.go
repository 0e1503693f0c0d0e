package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.MonitorDuration)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "reports", cfg.ReportsDir)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "hlscheck.yaml", `
monitorDuration: 1m
workers: 10
reportsDir: /tmp/reports
deliveries:
  baseURL: https://api.example.com
  token: abc
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.MonitorDuration)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, "/tmp/reports", cfg.ReportsDir)
	assert.Equal(t, "https://api.example.com", cfg.Deliveries.BaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "hlscheck.yaml", "workers: 10\n")
	t.Setenv("HLSCHECK_WORKERS", "3")
	t.Setenv("HLSCHECK_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "hlscheck.yaml", "wokers: 10\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict config parse error")
}

func TestLoadRejectsNonYAMLExtension(t *testing.T) {
	path := writeConfig(t, "hlscheck.json", "{}")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	path := writeConfig(t, "hlscheck.yaml", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"duration too short", func(c *Config) { c.MonitorDuration = time.Second }, "monitorDuration"},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, "httpTimeout"},
		{"too many workers", func(c *Config) { c.Workers = 200 }, "workers"},
		{"negative probe rate", func(c *Config) { c.ProbeRate = -1 }, "probeRate"},
		{"empty reports dir", func(c *Config) { c.ReportsDir = "" }, "reportsDir"},
		{"token without base URL", func(c *Config) { c.Deliveries.Token = "abc" }, "deliveries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("HLSCHECK_WORKERS", "lots")
	t.Setenv("HLSCHECK_PROBE_RATE", "fast")
	t.Setenv("HLSCHECK_MONITOR_DURATION", "soon")

	assert.Equal(t, 7, ParseInt("HLSCHECK_WORKERS", 7))
	assert.Equal(t, 2.5, ParseFloat("HLSCHECK_PROBE_RATE", 2.5))
	assert.Equal(t, time.Minute, ParseDuration("HLSCHECK_MONITOR_DURATION", time.Minute))
}
