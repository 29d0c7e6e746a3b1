package main

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nedwardsnae/StructLayout/internal/slbin"
	"github.com/nedwardsnae/StructLayout/layout"
)

var dumpFormat string

var (
	recordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	pointerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

var dumpCmd = &cobra.Command{
	Use:   "dump <result-file>",
	Short: "Pretty-print a saved layout result",
	Long: `Dump reads a result file written by inspect and prints the layout
tree: one line per node with its offset, size, and kind.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "text", "output format: text or json")
}

func runDump(cmd *cobra.Command, args []string) error {
	if dumpFormat != "text" && dumpFormat != "json" {
		return fmt.Errorf("unknown format: %s", dumpFormat)
	}

	res, err := slbin.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}

	if dumpFormat == "json" {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintf(output, "%s\n", data)
		return nil
	}

	if res.Root == nil {
		fmt.Fprintln(output, "empty result")
		return nil
	}

	printNode(res.Root, res.Files, 0)
	return nil
}

func printNode(n *layout.Node, files []string, depth int) {
	indent := ""
	for range depth {
		indent += "  "
	}

	label := nodeLabel(n)
	meta := fmt.Sprintf("off=%d size=%d", n.Offset, n.Size)
	if n.Align > 0 {
		meta += fmt.Sprintf(" align=%d", n.Align)
	}
	if pos := n.TypeLocation; pos != nil && pos.File >= 0 && pos.File < len(files) {
		meta += fmt.Sprintf(" %s:%d:%d", files[pos.File], pos.Line, pos.Column)
	}

	fmt.Fprintf(output, "%s%s %s\n", indent, label, metaStyle.Render(meta))

	for _, child := range n.Children {
		printNode(child, files, depth+1)
	}
}

func nodeLabel(n *layout.Node) string {
	kind := n.Category.String()

	switch n.Category {
	case layout.CategoryRecord, layout.CategoryNVBase, layout.CategoryNVPrimaryBase,
		layout.CategoryVBase, layout.CategoryVPrimaryBase:
		name := n.TypeName
		if n.Name != "" {
			name = fmt.Sprintf("%s %s", n.TypeName, n.Name)
		}
		return fmt.Sprintf("%s %s", recordStyle.Render(name), kind)

	case layout.CategoryVTablePtr, layout.CategoryVFTablePtr,
		layout.CategoryVBTablePtr, layout.CategoryVtorDisp:
		return pointerStyle.Render(kind)

	case layout.CategoryBitRange:
		return fieldStyle.Render(fmt.Sprintf("bits %d..%d", n.Offset, n.Offset+n.Size-1))

	default:
		name := n.Name
		if n.TypeName != "" {
			name = fmt.Sprintf("%s %s", n.TypeName, n.Name)
		}
		return fmt.Sprintf("%s %s", fieldStyle.Render(name), kind)
	}
}
