// Package config provides configuration loading and management for bkbit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete bkbit configuration
type Config struct {
	Translator TranslatorConfig `yaml:"translator"`
	Graph      GraphConfig      `yaml:"graph"`
	Watch      WatchConfig      `yaml:"watch"`
	Log        LogConfig        `yaml:"log"`
}

// TranslatorConfig configures the GFF3 translator defaults
type TranslatorConfig struct {
	// HashAlgorithms selects the checksum set computed over source files
	// (subset of SHA256, MD5, SHA1)
	HashAlgorithms []string `yaml:"hash_algorithms"`
	// FeatureFilter lists the GFF3 feature types to process
	FeatureFilter []string `yaml:"feature_filter"`
	// Workers bounds the file-manifest worker pool (0 = one per CPU)
	Workers int `yaml:"workers"`
}

// GraphConfig configures the optional knowledge-graph ingest sink
type GraphConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// DebounceDelay is how long to wait for a dropped file to settle
	DebounceDelay time.Duration `yaml:"debounce_delay"`
	// Extensions lists the file extensions picked up from the drop directory
	Extensions []string `yaml:"extensions"`
}

// LogConfig configures diagnostics output
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`
	// File appends diagnostics to a companion log file when set
	File string `yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Translator: TranslatorConfig{
			HashAlgorithms: []string{"SHA256", "MD5"},
			FeatureFilter:  []string{"gene", "pseudogene", "ncRNA_gene"},
			Workers:        0, // One per CPU
		},
		Graph: GraphConfig{
			URL: "", // Publishing disabled
		},
		Watch: WatchConfig{
			DebounceDelay: 500 * time.Millisecond,
			Extensions:    []string{".gff", ".gff3", ".gz"},
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if len(c.Translator.HashAlgorithms) == 0 {
		return fmt.Errorf("translator.hash_algorithms is required")
	}
	if len(c.Translator.FeatureFilter) == 0 {
		return fmt.Errorf("translator.feature_filter is required")
	}
	if c.Translator.Workers < 0 {
		return fmt.Errorf("translator.workers must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Translator
	if len(other.Translator.HashAlgorithms) > 0 {
		c.Translator.HashAlgorithms = other.Translator.HashAlgorithms
	}
	if len(other.Translator.FeatureFilter) > 0 {
		c.Translator.FeatureFilter = other.Translator.FeatureFilter
	}
	if other.Translator.Workers != 0 {
		c.Translator.Workers = other.Translator.Workers
	}

	// Graph
	if other.Graph.URL != "" {
		c.Graph.URL = other.Graph.URL
	}

	// Watch
	if other.Watch.DebounceDelay != 0 {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
	if len(other.Watch.Extensions) > 0 {
		c.Watch.Extensions = other.Watch.Extensions
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
}
