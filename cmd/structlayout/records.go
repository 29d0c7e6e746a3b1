package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nedwardsnae/StructLayout/internal/dwarfprov"
)

var (
	recordsMatch string
	recordsLimit int
)

var recordsCmd = &cobra.Command{
	Use:   "records <binary>",
	Short: "List records found in the binary's debug info",
	Long: `List every complete class, struct, and union indexed from the
binary's debug info, with size and declaration position.

Use --match to filter by a name substring.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecords,
}

func init() {
	recordsCmd.Flags().StringVarP(&recordsMatch, "match", "m", "", "only show records whose name contains this substring")
	recordsCmd.Flags().IntVarP(&recordsLimit, "limit", "n", 0, "limit number of records shown (0 = unlimited)")
}

func runRecords(cmd *cobra.Command, args []string) error {
	provider, err := dwarfprov.Open(args[0], "")
	if err != nil {
		return fmt.Errorf("failed to open binary: %w", err)
	}

	fmt.Fprintf(output, "%-8s %-8s %s\n", "SIZE", "DYN", "NAME")
	fmt.Fprintf(output, "%s\n", strings.Repeat("-", 80))

	count := 0
	for rec := range provider.Records() {
		if recordsMatch != "" && !strings.Contains(rec.Name(), recordsMatch) {
			continue
		}

		dyn := "-"
		if rec.Dynamic() {
			dyn = "yes"
		}

		name := rec.Name()
		if loc := rec.Location(); loc.Valid {
			name = fmt.Sprintf("%s (%s:%d)", name, loc.Filename, loc.Line)
		}

		size := "-"
		if lay, err := provider.Layout(rec); err == nil {
			size = fmt.Sprintf("%d", lay.Size)
		}

		fmt.Fprintf(output, "%-8s %-8s %s\n", size, dyn, name)

		count++
		if recordsLimit > 0 && count >= recordsLimit {
			break
		}
	}

	fmt.Fprintf(output, "\nTotal: %d records\n", count)
	return nil
}
