package config

import (
	"fmt"

	"github.com/scanops/scandiff/internal/analyzer"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
	Markers  MarkerConfig   `yaml:"markers" json:"markers"`
}

// AnalysisConfig configures log analysis behavior
type AnalysisConfig struct {
	// Format forces a log format instead of auto-detection.
	// One of: auto, cxone, cxone_sast, cxsast, dast.
	Format string `yaml:"format" json:"format"`

	// MaxFileSizeMB rejects log files larger than this before reading
	MaxFileSizeMB int `yaml:"max_file_size_mb" json:"max_file_size_mb"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// WatchConfig configures live log watching
type WatchConfig struct {
	// Filter is a case-insensitive substring applied to new lines
	Filter string `yaml:"filter" json:"filter"`

	// Levels restricts watched output to the listed log levels
	Levels []string `yaml:"levels" json:"levels"`
}

// MarkerConfig configures known-issue marker scanning
type MarkerConfig struct {
	// EnableDefaults gates the built-in markers. A pointer distinguishes
	// "not set" (defaults stay on) from an explicit false in a config file.
	EnableDefaults *bool             `yaml:"enable_defaults" json:"enable_defaults"`
	Custom         []analyzer.Marker `yaml:"custom" json:"custom"`
}

// DefaultMarkers are the built-in known-issue markers applied when
// markers.enable_defaults is true.
var DefaultMarkers = []analyzer.Marker{
	{
		ID:    "out-of-memory",
		Name:  "Engine out of memory",
		Regex: `out\s?of memory|OutOfMemoryException|memory pressure`,
	},
	{
		ID:    "scan-timeout",
		Name:  "Scan timed out",
		Regex: `scan.*timed out|timeout expired|operation has timed out`,
	},
	{
		ID:    "license-failure",
		Name:  "License check failed",
		Regex: `license (?:is )?(?:invalid|expired|not found)`,
	},
	{
		ID:       "source-pull-failure",
		Name:     "Source fetch failed",
		Keywords: []string{"failed to download source", "unable to clone repository"},
	},
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			Format:        "auto",
			MaxFileSizeMB: 512,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
		},
		Watch: WatchConfig{},
		Markers: MarkerConfig{
			EnableDefaults: boolPtr(true),
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// EffectiveMarkers returns the marker set to scan with: defaults (when
// enabled) followed by custom markers.
func (c *Config) EffectiveMarkers() []analyzer.Marker {
	var markers []analyzer.Marker
	if c.Markers.EnableDefaults == nil || *c.Markers.EnableDefaults {
		markers = append(markers, DefaultMarkers...)
	}
	markers = append(markers, c.Markers.Custom...)
	return markers
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAnalysisConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	return c.validateMarkerConfig()
}

func (c *Config) validateAnalysisConfig() error {
	if c.Analysis.Format != "" {
		validFormats := map[string]bool{
			"auto":       true,
			"cxone":      true,
			"cxone_sast": true,
			"cxsast":     true,
			"dast":       true,
		}
		if !validFormats[c.Analysis.Format] {
			return fmt.Errorf("invalid analysis format: %s (must be one of: auto, cxone, cxone_sast, cxsast, dast)", c.Analysis.Format)
		}
	}
	if c.Analysis.MaxFileSizeMB < 1 {
		return fmt.Errorf("max_file_size_mb must be greater than 0")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

func (c *Config) validateMarkerConfig() error {
	if err := analyzer.CompileMarkers(c.Markers.Custom); err != nil {
		return fmt.Errorf("invalid custom marker: %w", err)
	}
	return nil
}
