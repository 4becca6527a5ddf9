package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/idelchi/crlfstat/internal/crlfstat"
)

// ibytes renders a byte count in IEC units.
func ibytes(n int64) string {
	u, err := safecast.Conv[uint64](n)
	if err != nil {
		return fmt.Sprintf("%d B", n)
	}

	return humanize.IBytes(u)
}

// extList renders extensions as "[ .a .b ]".
func extList(exts []string) string {
	return "[ " + strings.Join(quoteEmpty(exts), " ") + " ]"
}

// PrintJSON outputs statistics in JSON format.
func PrintJSON(stats *crlfstat.Stats, writer io.Writer) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintText outputs the summary as plain lines.
func PrintText(stats *crlfstat.Stats, writer io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total files analyzed: %d\n", stats.TotalFiles)
	fmt.Fprintf(&sb, "Line endings CRLF/LF/MIX: %d/%d/%d\n",
		stats.CRLFOnlyFiles, stats.LFOnlyFiles, stats.MixedEOLFiles)
	fmt.Fprintf(&sb, "Indents SPACE/TAB/MIX: %d/%d/%d\n",
		stats.SpaceOnlyFiles, stats.TabOnlyFiles, stats.MixedIndentFiles)

	fmt.Fprintf(&sb, "Binary files: %d", stats.BinaryFiles)

	if stats.BinaryFiles > 0 {
		fmt.Fprintf(&sb, " %s", extList(stats.BinaryExtensions))
	}

	sb.WriteString("\n")

	if len(stats.MixedEOLExtensions) > 0 {
		fmt.Fprintf(&sb, "Mixed line endings in: %s\n", extList(stats.MixedEOLExtensions))
	}

	if len(stats.MixedIndentExtensions) > 0 {
		fmt.Fprintf(&sb, "Mixed indents in: %s\n", extList(stats.MixedIndentExtensions))
	}

	if stats.ErrorCount > 0 {
		fmt.Fprintf(&sb, "Unreadable files: %d\n", stats.ErrorCount)
	}

	_, err := io.WriteString(writer, sb.String())

	return err
}

// PrintTable outputs statistics as a table.
func PrintTable(stats *crlfstat.Stats, writer io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(writer)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Category", "Files", "Extensions"})

	tbl.AppendRow(table.Row{"CRLF only", stats.CRLFOnlyFiles, ""})
	tbl.AppendRow(table.Row{"LF only", stats.LFOnlyFiles, ""})
	tbl.AppendRow(table.Row{"Mixed line endings", stats.MixedEOLFiles, strings.Join(quoteEmpty(stats.MixedEOLExtensions), " ")})
	tbl.AppendSeparator()
	tbl.AppendRow(table.Row{"Space indent", stats.SpaceOnlyFiles, ""})
	tbl.AppendRow(table.Row{"Tab indent", stats.TabOnlyFiles, ""})
	tbl.AppendRow(table.Row{"Mixed indent", stats.MixedIndentFiles, strings.Join(quoteEmpty(stats.MixedIndentExtensions), " ")})
	tbl.AppendSeparator()
	tbl.AppendRow(table.Row{"Binary", stats.BinaryFiles, strings.Join(quoteEmpty(stats.BinaryExtensions), " ")})

	if stats.ErrorCount > 0 {
		tbl.AppendRow(table.Row{"Unreadable", stats.ErrorCount, ""})
	}

	tbl.AppendFooter(table.Row{
		"Total",
		stats.TotalFiles,
		fmt.Sprintf("%s in %v", ibytes(stats.TotalBytes), stats.Elapsed.Round(time.Millisecond)),
	})

	tbl.Render()

	return nil
}

// quoteEmpty shows the empty extension as "".
func quoteEmpty(exts []string) []string {
	out := make([]string, len(exts))
	for i, ext := range exts {
		if ext == "" {
			ext = `""`
		}

		out[i] = ext
	}

	return out
}
