// Package config provides configuration management for hlscheck. Settings
// come from three layers: built-in defaults, an optional YAML file, and
// HLSCHECK_* environment variables, the later layers winning.
package config

import (
	"fmt"
	"time"
)

// Config is the fully merged runtime configuration.
type Config struct {
	// MonitorDuration bounds the sequence-number monitoring phase per stream.
	MonitorDuration time.Duration `yaml:"monitorDuration,omitempty"`

	// HTTPTimeout bounds every manifest fetch and segment probe.
	HTTPTimeout time.Duration `yaml:"httpTimeout,omitempty"`

	// Workers is the width of the stream test pool.
	Workers int `yaml:"workers,omitempty"`

	// ProbeRate limits segment HEAD probes per second. Zero disables the
	// limiter.
	ProbeRate float64 `yaml:"probeRate,omitempty"`

	// ReportsDir is where CSV and JSON reports are written.
	ReportsDir string `yaml:"reportsDir,omitempty"`

	LogLevel string `yaml:"logLevel,omitempty"`

	FFmpegPath  string `yaml:"ffmpegPath,omitempty"`
	FFprobePath string `yaml:"ffprobePath,omitempty"`

	Deliveries DeliveriesConfig `yaml:"deliveries,omitempty"`
}

// DeliveriesConfig configures the optional deliveries API target source.
type DeliveriesConfig struct {
	BaseURL string `yaml:"baseURL,omitempty"`

	// Token is the bearer token. Leave empty to fetch it from SecretARN.
	Token string `yaml:"token,omitempty"`

	// SecretARN names an AWS Secrets Manager secret holding the API token.
	SecretARN string `yaml:"secretARN,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MonitorDuration: 30 * time.Second,
		HTTPTimeout:     15 * time.Second,
		Workers:         5,
		ProbeRate:       0,
		ReportsDir:      "reports",
		LogLevel:        "info",
		FFmpegPath:      "ffmpeg",
		FFprobePath:     "ffprobe",
	}
}

// Validate checks the merged configuration for operator errors.
func Validate(cfg Config) error {
	if cfg.MonitorDuration < 2*time.Second {
		return fmt.Errorf("monitorDuration %s is below the 2s sampling interval", cfg.MonitorDuration)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("httpTimeout must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.Workers < 1 || cfg.Workers > 100 {
		return fmt.Errorf("workers must be in 1..100, got %d", cfg.Workers)
	}
	if cfg.ProbeRate < 0 {
		return fmt.Errorf("probeRate must not be negative, got %v", cfg.ProbeRate)
	}
	if cfg.ReportsDir == "" {
		return fmt.Errorf("reportsDir must not be empty")
	}
	if cfg.FFmpegPath == "" || cfg.FFprobePath == "" {
		return fmt.Errorf("ffmpegPath and ffprobePath must not be empty")
	}
	if cfg.Deliveries.BaseURL == "" && (cfg.Deliveries.Token != "" || cfg.Deliveries.SecretARN != "") {
		return fmt.Errorf("deliveries credentials set without deliveries.baseURL")
	}
	return nil
}
