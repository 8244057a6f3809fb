/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/suparena/draftstore/storagemodels"
)

// Config is the file/environment form of the engine settings. Values from a
// YAML file are applied first, then environment variables override them.
type Config struct {
	Namespace                 string                       `yaml:"namespace" env:"DRAFTSTORE_NAMESPACE"`
	SchemaVersion             string                       `yaml:"schemaVersion" env:"DRAFTSTORE_SCHEMA_VERSION"`
	DebounceMillis            int                          `yaml:"debounceMillis" env:"DRAFTSTORE_DEBOUNCE_MS"`
	RetentionHours            int                          `yaml:"retentionHours" env:"DRAFTSTORE_RETENTION_HOURS"`
	CompressionThresholdBytes int                          `yaml:"compressionThresholdBytes" env:"DRAFTSTORE_COMPRESSION_THRESHOLD"`
	MaxBytes                  int64                        `yaml:"maxBytes" env:"DRAFTSTORE_MAX_BYTES"`
	StoragePath               string                       `yaml:"storagePath" env:"DRAFTSTORE_DB_PATH"`
	RemoteBaseURL             string                       `yaml:"remoteBaseUrl" env:"DRAFTSTORE_REMOTE_URL"`
	LegacySources             []storagemodels.LegacySource `yaml:"legacySources"`
}

// Load reads configuration from an optional YAML file and the environment.
// An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// EngineOptions converts the config into functional options, leaving unset
// values to the engine defaults.
func (c *Config) EngineOptions() []storagemodels.EngineOption {
	var opts []storagemodels.EngineOption
	if c.Namespace != "" {
		opts = append(opts, storagemodels.WithNamespace(c.Namespace))
	}
	if c.SchemaVersion != "" {
		opts = append(opts, storagemodels.WithSchemaVersion(c.SchemaVersion))
	}
	if c.DebounceMillis > 0 {
		opts = append(opts, storagemodels.WithDebounce(time.Duration(c.DebounceMillis)*time.Millisecond))
	}
	if c.RetentionHours > 0 {
		opts = append(opts, storagemodels.WithRetention(time.Duration(c.RetentionHours)*time.Hour))
	}
	if c.CompressionThresholdBytes > 0 {
		opts = append(opts, storagemodels.WithCompressionThreshold(c.CompressionThresholdBytes))
	}
	if c.MaxBytes > 0 {
		opts = append(opts, storagemodels.WithMaxBytes(c.MaxBytes))
	}
	if len(c.LegacySources) > 0 {
		opts = append(opts, storagemodels.WithLegacySources(c.LegacySources...))
	}
	return opts
}
