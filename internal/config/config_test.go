package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 5, cfg.PageSize)
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Telemetry.Enabled)
	require.NotEmpty(t, cfg.DatabasePath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "page_size"},
		{"negative page size", func(c *Config) { c.PageSize = -1 }, "page_size"},
		{"unknown exporter", func(c *Config) { c.Telemetry.Exporter = "jaeger" }, "telemetry.exporter"},
		{"otlp without endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "otlp"
		}, "telemetry.endpoint"},
		{"otlp with endpoint", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Exporter = "otlp"
			c.Telemetry.Endpoint = "localhost:4317"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

// TestDefaultConfigTemplate_MatchesDefaults parses the commented template
// and checks the values it ships agree with Defaults().
func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	var parsed struct {
		PageSize int `yaml:"page_size"`
		Log      struct {
			Level string `yaml:"level"`
		} `yaml:"log"`
		Telemetry struct {
			Enabled  bool   `yaml:"enabled"`
			Exporter string `yaml:"exporter"`
		} `yaml:"telemetry"`
	}
	err := yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed)
	require.NoError(t, err, "template should be valid YAML")

	defaults := Defaults()
	require.Equal(t, defaults.PageSize, parsed.PageSize)
	require.Equal(t, defaults.Log.Level, parsed.Log.Level)
	require.Equal(t, defaults.Telemetry.Enabled, parsed.Telemetry.Enabled)
	require.Equal(t, defaults.Telemetry.Exporter, parsed.Telemetry.Exporter)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	err := WriteDefaultConfig(path)
	require.NoError(t, err, "missing parent directories are created")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(content))
}
