// Package config loads the asset builder's project configuration and resolves
// per-pipeline options.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// Config represents the project configuration file.
type Config struct {
	Source        string           `yaml:"source,omitempty"`
	Destination   string           `yaml:"destination,omitempty"`
	AssetPipeline OptionsOverlay   `yaml:"asset_pipeline,omitempty"`
	Logging       LoggingConfig    `yaml:"logging,omitempty"`
	History       HistoryConfig    `yaml:"history,omitempty"`
	Metrics       MetricsConfig    `yaml:"metrics,omitempty"`
	Watch         WatchConfig      `yaml:"watch,omitempty"`
	Pipelines     []PipelineConfig `yaml:"pipelines"`
}

// PipelineConfig describes one manifest to process.
// Exactly one of Manifest and ManifestFile is set.
type PipelineConfig struct {
	Tag          string         `yaml:"tag"`
	Prefix       string         `yaml:"prefix"`
	Type         string         `yaml:"type"`
	Manifest     []string       `yaml:"manifest,omitempty"`
	ManifestFile string         `yaml:"manifest_file,omitempty"` // relative to Source
	Options      OptionsOverlay `yaml:"options,omitempty"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// MetricsConfig controls Prometheus metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // written after build
	Addr     string `yaml:"addr,omitempty"`     // served during watch
}

// WatchConfig tunes the watch loop.
type WatchConfig struct {
	Debounce     string `yaml:"debounce,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"`
}

// DebounceDuration parses Debounce, falling back to 500ms.
func (w WatchConfig) DebounceDuration() time.Duration {
	if d, err := time.ParseDuration(w.Debounce); err == nil && d > 0 {
		return d
	}
	return 500 * time.Millisecond
}

// PollDuration parses PollInterval; zero disables polling.
func (w WatchConfig) PollDuration() time.Duration {
	if d, err := time.ParseDuration(w.PollInterval); err == nil && d > 0 {
		return d
	}
	return 0
}

// Options returns the defaults with the project-wide asset_pipeline overlay applied.
func (c *Config) Options() Options {
	return DefaultOptions().Merge(c.AssetPipeline)
}

// OptionsFor returns the effective options for one pipeline.
func (c *Config) OptionsFor(p PipelineConfig) Options {
	return c.Options().Merge(p.Options)
}

// Load loads a configuration file.
func Load(configPath string) (*Config, error) {
	if envPath, err := loadEnvFile(); err != nil {
		slog.Warn("Failed to load env file", "error", err)
	} else if envPath != "" {
		slog.Debug("Loaded environment variables", "path", envPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().WithContext("path", configPath).Build()
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes, defaults and validates configuration YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}

	applyDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "configuration validation failed").Fatal().Build()
	}
	return &cfg, nil
}

// applyDefaults applies default values to configuration.
func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = "."
	}
	if cfg.Destination == "" {
		cfg.Destination = "_site"
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	if cfg.History.Path == "" {
		cfg.History.Path = ".asset_pipeline_history.db"
	}
	for i := range cfg.Pipelines {
		cfg.Pipelines[i].Type = strings.TrimSpace(cfg.Pipelines[i].Type)
	}
}

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	if len(cfg.Pipelines) == 0 {
		return fmt.Errorf("at least one pipeline must be configured")
	}
	if err := cfg.Options().Validate(); err != nil {
		return fmt.Errorf("asset_pipeline: %w", err)
	}
	seen := make(map[string]bool, len(cfg.Pipelines))
	for i, p := range cfg.Pipelines {
		if p.Prefix == "" {
			return fmt.Errorf("pipelines[%d]: prefix is required", i)
		}
		if p.Tag == "" {
			return fmt.Errorf("pipelines[%d] (%s): tag is required", i, p.Prefix)
		}
		if !strings.HasPrefix(p.Type, ".") || len(p.Type) < 2 {
			return fmt.Errorf("pipelines[%d] (%s): type must be an extension like \".js\", got %q", i, p.Prefix, p.Type)
		}
		if (len(p.Manifest) == 0) == (p.ManifestFile == "") {
			return fmt.Errorf("pipelines[%d] (%s): exactly one of manifest or manifest_file is required", i, p.Prefix)
		}
		key := p.Tag + "/" + p.Prefix
		if seen[key] {
			return fmt.Errorf("pipelines[%d]: duplicate pipeline %s", i, key)
		}
		seen[key] = true
		if err := cfg.OptionsFor(p).Validate(); err != nil {
			return fmt.Errorf("pipelines[%d] (%s): %w", i, p.Prefix, err)
		}
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Config{
		Source:      ".",
		Destination: "_site",
		AssetPipeline: OptionsOverlay{
			OutputPath: StringPtr(DefaultOutputPath),
			Bundle:     BoolPtr(true),
			Compress:   BoolPtr(true),
			Gzip:       BoolPtr(false),
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		History: HistoryConfig{Enabled: true, Path: ".asset_pipeline_history.db"},
		Watch:   WatchConfig{Debounce: "500ms"},
		Pipelines: []PipelineConfig{
			{Tag: "javascript", Prefix: "global", Type: ".js", Manifest: []string{"_assets/js/vendor.js", "_assets/js/app.js"}},
			{Tag: "css", Prefix: "site", Type: ".css", ManifestFile: "_assets/css/manifest.yml"},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Fatal().Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to write config file").
			Fatal().WithContext("path", configPath).Build()
	}
	return nil
}
