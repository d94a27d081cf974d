package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.scandiff.yaml",               // Project-specific config (highest priority)
	"~/.config/scandiff/config.yaml", // User config
	"/etc/scandiff/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.scandiff.yaml
// 4. ~/.config/scandiff/config.yaml
// 5. /etc/scandiff/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load standard paths lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads a YAML file and merges it into config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"SCANDIFF_ANALYSIS_FORMAT":           func(v string) error { config.Analysis.Format = v; return nil },
		"SCANDIFF_ANALYSIS_MAX_FILE_SIZE_MB": func(v string) error { return parseInt(v, &config.Analysis.MaxFileSizeMB) },

		"SCANDIFF_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"SCANDIFF_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"SCANDIFF_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },

		"SCANDIFF_WATCH_FILTER": func(v string) error { config.Watch.Filter = v; return nil },

		"SCANDIFF_MARKERS_ENABLE_DEFAULTS": func(v string) error {
			var enabled bool
			if err := parseBool(v, &enabled); err != nil {
				return err
			}
			config.Markers.EnableDefaults = &enabled
			return nil
		},
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Watch levels are a comma-separated list
	if levels := os.Getenv("SCANDIFF_WATCH_LEVELS"); levels != "" {
		config.Watch.Levels = strings.Split(levels, ",")
		for i, level := range config.Watch.Levels {
			config.Watch.Levels[i] = strings.TrimSpace(level)
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// SampleConfig returns a commented starter configuration file
func SampleConfig() string {
	return `# scandiff configuration
version: "1.0"

analysis:
  # Force a log format instead of auto-detection.
  # One of: auto, cxone, cxone_sast, cxsast, dast.
  format: auto
  max_file_size_mb: 512

output:
  # One of: text, json, markdown, csv.
  default_format: text
  # One of: auto, always, never.
  color_mode: auto
  verbose: false

watch:
  # Case-insensitive substring filter for watched lines.
  filter: ""
  # Restrict watched output to these levels, e.g. [ERROR, WARN].
  levels: []

markers:
  enable_defaults: true
  custom: []
  # custom:
  #   - id: nightly-crash
  #     name: Known nightly crash
  #     regex: 'NullReferenceException.*ResultsWriter'
  #   - id: slow-fetch
  #     name: Slow source fetch
  #     keywords: ["source pull took"]
`
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config.
// Only non-zero values from source overwrite destination.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}
	if src.Analysis.Format != "" {
		dst.Analysis.Format = src.Analysis.Format
	}
	if src.Analysis.MaxFileSizeMB != 0 {
		dst.Analysis.MaxFileSizeMB = src.Analysis.MaxFileSizeMB
	}
	if src.Output.DefaultFormat != "" {
		dst.Output.DefaultFormat = src.Output.DefaultFormat
	}
	if src.Output.ColorMode != "" {
		dst.Output.ColorMode = src.Output.ColorMode
	}
	if src.Output.Verbose {
		dst.Output.Verbose = true
	}
	if src.Watch.Filter != "" {
		dst.Watch.Filter = src.Watch.Filter
	}
	if len(src.Watch.Levels) > 0 {
		dst.Watch.Levels = src.Watch.Levels
	}
	if src.Markers.EnableDefaults != nil {
		dst.Markers.EnableDefaults = src.Markers.EnableDefaults
	}
	if len(src.Markers.Custom) > 0 {
		dst.Markers.Custom = append(dst.Markers.Custom, src.Markers.Custom...)
	}
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
