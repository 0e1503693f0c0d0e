package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadFile parses a YAML config file in strict mode: unknown keys, trailing
// documents and non-YAML extensions are errors.
func loadFile(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return Config{}, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Config{}, errors.New("config file contains multiple documents or trailing content")
	}
	return cfg, nil
}

// merge overlays every set field of over onto base.
func merge(base, over Config) Config {
	if over.MonitorDuration != 0 {
		base.MonitorDuration = over.MonitorDuration
	}
	if over.HTTPTimeout != 0 {
		base.HTTPTimeout = over.HTTPTimeout
	}
	if over.Workers != 0 {
		base.Workers = over.Workers
	}
	if over.ProbeRate != 0 {
		base.ProbeRate = over.ProbeRate
	}
	if over.ReportsDir != "" {
		base.ReportsDir = over.ReportsDir
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	if over.FFmpegPath != "" {
		base.FFmpegPath = over.FFmpegPath
	}
	if over.FFprobePath != "" {
		base.FFprobePath = over.FFprobePath
	}
	if over.Deliveries.BaseURL != "" {
		base.Deliveries.BaseURL = over.Deliveries.BaseURL
	}
	if over.Deliveries.Token != "" {
		base.Deliveries.Token = over.Deliveries.Token
	}
	if over.Deliveries.SecretARN != "" {
		base.Deliveries.SecretARN = over.Deliveries.SecretARN
	}
	return base
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment overrides. The result
// is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, fileCfg)
	}

	cfg = applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
