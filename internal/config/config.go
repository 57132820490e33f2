// Package config loads ctlog settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ctlog/internal/parse"
	"github.com/roach88/ctlog/internal/timestamp"
)

// Granularities accepted by the compile-rate report.
const (
	GranularityHour   = "hour"
	GranularityMinute = "minute"
)

// DefaultTop is the row limit of ranked reports when none is given.
const DefaultTop = 10

// Config holds the tunables of a ctlog run. Zero values mean "use the
// default"; Default returns a fully populated Config.
type Config struct {
	// EngineMarker prefixes every compilation engine line.
	EngineMarker string `yaml:"engine_marker"`

	// FlushingMarker identifies code-cache eviction lines.
	FlushingMarker string `yaml:"flushing_marker"`

	// FallbackTimestamp is given to interpreter-fallback lines without a
	// timestamp of their own.
	FallbackTimestamp string `yaml:"fallback_timestamp"`

	// IgnoreSubstrings drops lines containing any of these strings before
	// classification.
	IgnoreSubstrings []string `yaml:"ignore_substrings"`

	// DefaultTop limits histogram and hotspot rows.
	DefaultTop int `yaml:"default_top"`

	// Granularity is the compile-rate bucket size: hour or minute.
	Granularity string `yaml:"granularity"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		EngineMarker:      parse.DefaultEngineMarker,
		FlushingMarker:    parse.DefaultFlushingMarker,
		FallbackTimestamp: parse.DefaultFallbackTime.Format(time.RFC3339Nano),
		DefaultTop:        DefaultTop,
		Granularity:       GranularityHour,
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.EngineMarker == "" {
		return fmt.Errorf("engine_marker must not be empty")
	}
	if c.FlushingMarker == "" {
		return fmt.Errorf("flushing_marker must not be empty")
	}
	if _, err := timestamp.Normalize(c.FallbackTimestamp); err != nil {
		return fmt.Errorf("fallback_timestamp: %w", err)
	}
	if c.DefaultTop <= 0 {
		return fmt.Errorf("default_top must be positive, got %d", c.DefaultTop)
	}
	if err := ValidateGranularity(c.Granularity); err != nil {
		return err
	}
	return nil
}

// ValidateGranularity checks a compile-rate bucket name.
func ValidateGranularity(g string) error {
	switch g {
	case GranularityHour, GranularityMinute:
		return nil
	}
	return fmt.Errorf("granularity must be %q or %q, got %q", GranularityHour, GranularityMinute, g)
}

// ParserOptions converts the config into parser options. It assumes a
// validated config.
func (c *Config) ParserOptions() parse.Options {
	fallback, _ := timestamp.Normalize(c.FallbackTimestamp)
	return parse.Options{
		EngineMarker:   c.EngineMarker,
		FlushingMarker: c.FlushingMarker,
		FallbackTime:   fallback,
		Ignore:         c.IgnoreSubstrings,
	}
}
