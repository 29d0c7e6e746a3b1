package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nedwardsnae/StructLayout/internal/config"
	"github.com/nedwardsnae/StructLayout/internal/dwarfprov"
	"github.com/nedwardsnae/StructLayout/internal/slbin"
	"github.com/nedwardsnae/StructLayout/layout"
)

var (
	inspectFile   string
	inspectLine   uint32
	inspectCol    uint32
	inspectOutput string
	inspectFormat string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <binary>",
	Short: "Inspect the record declared at a source position",
	Long: `Inspect locates the record declared at --file:--line:--col in the
given binary's debug info, reconstructs its memory layout, and writes the
result to the output file.

The position may fall anywhere within the record's declaration, or on a
variable whose type is a record. When nothing is found the run still
succeeds and writes an empty result.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "source file to inspect (required)")
	inspectCmd.Flags().Uint32VarP(&inspectLine, "line", "l", 0, "line of the inspected position (required)")
	inspectCmd.Flags().Uint32VarP(&inspectCol, "col", "c", 0, "column of the inspected position (required)")
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "result file path (default from config)")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "", "result format: slbin or json (default from config)")
	inspectCmd.MarkFlagRequired("file")
	inspectCmd.MarkFlagRequired("line")
	inspectCmd.MarkFlagRequired("col")
}

func runInspect(cmd *cobra.Command, args []string) error {
	binPath := args[0]

	outPath := cfg.Output.Path
	if inspectOutput != "" {
		outPath = inspectOutput
	}
	format := cfg.Output.Format
	if inspectFormat != "" {
		format = inspectFormat
	}
	if format != config.FormatSlbin && format != config.FormatJSON {
		return fmt.Errorf("unknown format: %s", format)
	}

	provider, err := dwarfprov.Open(binPath, inspectFile)
	if err != nil {
		return fmt.Errorf("failed to open binary: %w", err)
	}

	session := layout.NewSession(provider)
	res, err := session.Run(layout.Filter{Row: inspectLine, Column: inspectCol})
	if err != nil {
		return fmt.Errorf("failed to build layout: %w", err)
	}
	defer session.Reset()

	if err := writeResult(outPath, format, res); err != nil {
		return err
	}

	if res.Root == nil {
		fmt.Fprintf(output, "no record at %s:%d:%d\n", inspectFile, inspectLine, inspectCol)
	} else {
		fmt.Fprintf(output, "%s: %d bytes, align %d -> %s\n",
			res.Root.TypeName, res.Root.Size, res.Root.Align, outPath)
	}
	return nil
}

func writeResult(path, format string, res *layout.Result) error {
	if format == config.FormatJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		return nil
	}
	if err := slbin.WriteFile(path, res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
