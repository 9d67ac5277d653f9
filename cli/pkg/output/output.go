// Package output renders rodeoctl results for humans and for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	okStyle      = color.New(color.FgGreen, color.Bold)
	failStyle    = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgCyan)
	warnStyle    = color.New(color.FgYellow)
	headingStyle = color.New(color.FgWhite, color.Bold)
)

// Success prints a green check line to stdout.
func Success(format string, a ...any) {
	fmt.Fprintln(os.Stdout, okStyle.Sprint("✓ "+fmt.Sprintf(format, a...)))
}

// Error prints a red cross line to stderr.
func Error(format string, a ...any) {
	fmt.Fprintln(os.Stderr, failStyle.Sprint("✗ "+fmt.Sprintf(format, a...)))
}

// Info prints a cyan informational line to stdout.
func Info(format string, a ...any) {
	fmt.Fprintln(os.Stdout, noteStyle.Sprint(fmt.Sprintf(format, a...)))
}

// Warn prints a yellow warning line to stdout.
func Warn(format string, a ...any) {
	fmt.Fprintln(os.Stdout, warnStyle.Sprint("⚠ "+fmt.Sprintf(format, a...)))
}

// JSON writes v to stdout indented, for --output json consumers.
func JSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table accumulates rows and renders them with each column sized to the
// widest cell seen for it.
type Table struct {
	columns []string
	widths  []int
	rows    [][]string
}

func NewTable(columns ...string) *Table {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	return &Table{columns: columns, widths: widths}
}

// AddRow appends one row. Missing cells render empty; cells beyond the
// column count are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i >= len(cells) {
			break
		}
		row[i] = cells[i]
		if len(cells[i]) > t.widths[i] {
			t.widths[i] = len(cells[i])
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) Render() {
	fmt.Fprintln(os.Stdout, headingStyle.Sprint(t.line(t.columns)))

	rule := make([]string, len(t.widths))
	for i, w := range t.widths {
		rule[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(os.Stdout, t.line(rule))

	for _, row := range t.rows {
		fmt.Fprintln(os.Stdout, t.line(row))
	}
}

// line pads each cell to its column width and joins with a two-space
// gutter, trimming the trailing run.
func (t *Table) line(cells []string) string {
	var b strings.Builder
	for i, cell := range cells {
		fmt.Fprintf(&b, "%-*s  ", t.widths[i], cell)
	}
	return strings.TrimRight(b.String(), " ")
}
