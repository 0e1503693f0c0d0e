package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	xlog "github.com/streamqa/hlscheck/internal/log"
)

func envLogger() zerolog.Logger {
	return xlog.WithComponent("config")
}

// ParseString reads a string environment variable or returns the default.
// Sensitive values (token, password, secret in the key) are never logged.
func ParseString(key, defaultValue string) string {
	logger := envLogger()
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password") || strings.Contains(lowerKey, "secret") {
		logger.Debug().Str("key", key).Bool("sensitive", true).Msg("using environment variable")
	} else {
		logger.Debug().Str("key", key).Str("value", value).Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer environment variable or returns the default.
// Malformed values fall back to the default with a warning.
func ParseInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger := envLogger()
		logger.Warn().Str("key", key).Str("value", value).Int("default", defaultValue).
			Msg("invalid integer in environment, using default")
		return defaultValue
	}
	return n
}

// ParseFloat reads a float environment variable or returns the default.
func ParseFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger := envLogger()
		logger.Warn().Str("key", key).Str("value", value).Float64("default", defaultValue).
			Msg("invalid float in environment, using default")
		return defaultValue
	}
	return f
}

// ParseDuration reads a Go duration string from the environment or returns
// the default.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger := envLogger()
		logger.Warn().Str("key", key).Str("value", value).Dur("default", defaultValue).
			Msg("invalid duration in environment, using default")
		return defaultValue
	}
	return d
}

// applyEnv overlays HLSCHECK_* environment variables onto cfg.
func applyEnv(cfg Config) Config {
	cfg.MonitorDuration = ParseDuration("HLSCHECK_MONITOR_DURATION", cfg.MonitorDuration)
	cfg.HTTPTimeout = ParseDuration("HLSCHECK_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.Workers = ParseInt("HLSCHECK_WORKERS", cfg.Workers)
	cfg.ProbeRate = ParseFloat("HLSCHECK_PROBE_RATE", cfg.ProbeRate)
	cfg.ReportsDir = ParseString("HLSCHECK_REPORTS_DIR", cfg.ReportsDir)
	cfg.LogLevel = ParseString("HLSCHECK_LOG_LEVEL", cfg.LogLevel)
	cfg.FFmpegPath = ParseString("HLSCHECK_FFMPEG_PATH", cfg.FFmpegPath)
	cfg.FFprobePath = ParseString("HLSCHECK_FFPROBE_PATH", cfg.FFprobePath)
	cfg.Deliveries.BaseURL = ParseString("HLSCHECK_DELIVERIES_URL", cfg.Deliveries.BaseURL)
	cfg.Deliveries.Token = ParseString("HLSCHECK_DELIVERIES_TOKEN", cfg.Deliveries.Token)
	cfg.Deliveries.SecretARN = ParseString("HLSCHECK_DELIVERIES_SECRET_ARN", cfg.Deliveries.SecretARN)
	return cfg
}
