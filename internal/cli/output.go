package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Table buffers rows and renders them column aligned.
type Table struct {
	headers []string
	rows    [][]string
	writer  io.Writer
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers, writer: os.Stdout}
}

func (t *Table) AddRow(cols ...string) {
	t.rows = append(t.rows, cols)
}

// Render prints the header, a dashed rule under each header, then the rows.
func (t *Table) Render() {
	w := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	rule := make([]string, len(t.headers))
	for i, h := range t.headers {
		rule[i] = strings.Repeat("-", len(h))
	}
	for _, line := range append([][]string{t.headers, rule}, t.rows...) {
		fmt.Fprintln(w, strings.Join(line, "\t"))
	}
	w.Flush()
}

// printOutput writes data as yaml when --output=yaml and as indented json otherwise.
// Commands render their own table for the default format before reaching here.
func printOutput(data interface{}) error {
	if getOutputFormat() == "yaml" {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func truncate(s string, maxLen int) string {
	switch {
	case len(s) <= maxLen:
		return s
	case maxLen <= 3:
		return s[:maxLen]
	default:
		return s[:maxLen-3] + "..."
	}
}

var statusMarkers = map[string]string{
	"ok": "+", "ready": "+", "connected": "+", "active": "+", "success": "+", "synced": "+", "completed": "+",
	"inactive": "-", "failed": "-", "cancelled": "-", "refunded": "-",
	"skipped": "*", "pending": "*", "processing": "*", "in_progress": "*",
	"partial": "~",
}

// formatStatus prefixes order, sync and health states with a marker readable without color.
func formatStatus(status string) string {
	if m, ok := statusMarkers[strings.ToLower(status)]; ok {
		return "[" + m + "] " + status
	}
	return status
}
