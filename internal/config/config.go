package config

// Config represents the complete structlayout configuration.
// It can be loaded from .structlayout/config.yml with environment variable
// overrides.
type Config struct {
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// OutputConfig controls where and how inspection results are written.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`     // result file path
	Format string `yaml:"format" mapstructure:"format"` // "slbin" or "json"
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // "debug", "info", "warn", "error" or "off"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Path:   "output.slbin",
			Format: FormatSlbin,
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

// Supported output formats.
const (
	FormatSlbin = "slbin"
	FormatJSON  = "json"
)
