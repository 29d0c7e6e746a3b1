package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nedwardsnae/StructLayout/internal/config"
	"github.com/nedwardsnae/StructLayout/internal/dwarfprov"
	"github.com/nedwardsnae/StructLayout/layout"
)

var (
	logLevel string
	verbose  bool

	cfg    *config.Config
	logger *zap.Logger
	output io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "structlayout",
	Short: "C++ record layout inspector",
	Long: `structlayout reads the DWARF debug information of a compiled binary
and reconstructs the memory layout of C++ classes, structs, and unions:
base placement, field offsets, bitfield positions, vtable pointers, and
virtual bases.

It can locate the record declared at a source position, list every record
in a binary, and pretty-print previously saved results.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.LoadConfig(); err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
			if err := config.Validate(cfg); err != nil {
				return err
			}
		}
		return setupLogging(cfg.Log.Level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(dumpCmd)
}

// setupLogging builds the diagnostic logger and hands it to the packages
// that log. Level "off" leaves their default nop loggers in place.
func setupLogging(level string) error {
	if level == "off" {
		return nil
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = lvl
	if logger, err = zc.Build(); err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	layout.SetLogger(logger.Named("layout"))
	dwarfprov.SetLogger(logger.Named("dwarf"))
	return nil
}
