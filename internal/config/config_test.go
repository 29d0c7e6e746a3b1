package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .structlayout/config.yml when present
// - Environment variables override config file values
// - Load() returns error for malformed YAML
// - Load() returns error for invalid configuration values
// - Validate() accepts valid configuration
// - Validate() rejects empty output path, unknown format, unknown log level
// - Validate() returns multiple errors for multiple invalid fields

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "output.slbin", cfg.Output.Path)
	assert.Equal(t, FormatSlbin, cfg.Output.Format)
	assert.Equal(t, "off", cfg.Log.Level)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
output:
  path: layouts/result.slbin
  format: json
log:
  level: debug
`)

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, "layouts/result.slbin", cfg.Output.Path)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_PartialConfigFileMergesWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
output:
  format: json
`)

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, "output.slbin", cfg.Output.Path, "unset keys keep defaults")
}

func TestLoad_EnvironmentOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
output:
  format: slbin
`)
	t.Setenv("STRUCTLAYOUT_OUTPUT_FORMAT", "json")
	t.Setenv("STRUCTLAYOUT_LOG_LEVEL", "warn")

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "output: [unclosed")

	_, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, `
output:
  format: xml
`)

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"json format", func(c *Config) { c.Output.Format = FormatJSON }, nil},
		{"empty path", func(c *Config) { c.Output.Path = "" }, ErrEmptyOutputPath},
		{"unknown format", func(c *Config) { c.Output.Format = "csv" }, ErrInvalidFormat},
		{"unknown level", func(c *Config) { c.Log.Level = "verbose" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Output.Path = ""
	cfg.Output.Format = "csv"
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyOutputPath)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func writeConfigFile(t *testing.T, rootDir, content string) {
	t.Helper()
	dir := filepath.Join(rootDir, ".structlayout")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))
}
