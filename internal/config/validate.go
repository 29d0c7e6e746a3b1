package config

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOutputPath indicates a missing output path
	ErrEmptyOutputPath = errors.New("empty output path")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidLogLevel indicates an unsupported log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Output.Path == "" {
		errs = append(errs, ErrEmptyOutputPath)
	}

	switch cfg.Output.Format {
	case FormatSlbin, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: %q (must be %q or %q)",
			ErrInvalidFormat, cfg.Output.Format, FormatSlbin, FormatJSON))
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error", "off":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Log.Level))
	}

	return errors.Join(errs...)
}
