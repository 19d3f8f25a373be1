// Package config provides configuration types and defaults for circ.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all configuration options for circ.
type Config struct {
	DatabasePath string          `mapstructure:"database_path"`
	PageSize     int             `mapstructure:"page_size"`
	Log          LogConfig       `mapstructure:"log"`
	Telemetry    TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // empty logs to stderr
}

// TelemetryConfig holds trace exporter options.
type TelemetryConfig struct {
	// Enabled turns on span export. Off by default.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the span destination.
	// Valid values: "stdout", "otlp"
	Exporter string `mapstructure:"exporter"`

	// Endpoint is the OTLP gRPC collector address, used when exporter
	// is "otlp".
	Endpoint string `mapstructure:"endpoint"`
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be greater than zero")
	}
	switch c.Telemetry.Exporter {
	case "", "stdout", "otlp":
	default:
		return fmt.Errorf("telemetry.exporter %q is not one of stdout, otlp", c.Telemetry.Exporter)
	}
	if c.Telemetry.Enabled && c.Telemetry.Exporter == "otlp" && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required for the otlp exporter")
	}
	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DatabasePath: DefaultDatabasePath(),
		PageSize:     5,
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}

// DefaultDatabasePath returns ~/.circ/circ.db, falling back to a relative
// path when the home directory cannot be resolved.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".circ", "circ.db")
	}
	return filepath.Join(home, ".circ", "circ.db")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# circ configuration

# Path to the library database file
# database_path: ~/.circ/circ.db

# Results per catalog search page
page_size: 5

# Logging
log:
  level: info    # debug, info, warn, error
  # file: ~/.circ/circ.log   # omit to log to stderr

# Trace export (off by default)
telemetry:
  enabled: false
  exporter: stdout   # stdout or otlp
  # endpoint: localhost:4317   # OTLP gRPC collector, for exporter: otlp
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
