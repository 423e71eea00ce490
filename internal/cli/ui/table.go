package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Table represents a simple table for displaying tabular data
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	opts    TableOptions
}

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
	// MaxCellWidth truncates longer cells with an ellipsis. Zero disables it.
	MaxCellWidth int
	// RightAlign marks columns, by index, whose cells are right aligned.
	RightAlign map[int]bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{writer: w, headers: headers}
	if opts != nil {
		t.opts = *opts
	}
	return t
}

// AddRow adds a row to the table. Missing cells render blank; extra
// cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = t.truncate(flatten(cells[i]))
		}
	}
	t.rows = append(t.rows, row)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	bold := t.color(color.Bold, color.FgYellow)
	for i, header := range t.headers {
		bold.Fprint(t.writer, t.pad(header, widths[i], i))
		t.gap(i)
	}
	fmt.Fprintln(t.writer)

	gray := t.color(color.FgHiBlack)
	for i, width := range widths {
		gray.Fprint(t.writer, strings.Repeat("─", width))
		t.gap(i)
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, cell := range row {
			fmt.Fprint(t.writer, t.pad(cell, widths[i], i))
			t.gap(i)
		}
		fmt.Fprintln(t.writer)
	}
}

func (t *Table) gap(i int) {
	if i < len(t.headers)-1 {
		fmt.Fprint(t.writer, "  ")
	}
}

func (t *Table) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.opts.NoColor {
		c.DisableColor()
	}
	return c
}

// pad measures display width, so colored and wide cells line up.
func (t *Table) pad(s string, width, col int) string {
	fill := width - lipgloss.Width(s)
	if fill <= 0 {
		return s
	}
	if t.opts.RightAlign[col] {
		return strings.Repeat(" ", fill) + s
	}
	return s + strings.Repeat(" ", fill)
}

func (t *Table) truncate(s string) string {
	limit := t.opts.MaxCellWidth
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// flatten keeps multi-line values on one table line.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// KeyValueTable renders a simple key-value table (2 columns)
type KeyValueTable struct {
	writer  io.Writer
	rows    [][2]string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair to the table
func (t *KeyValueTable) AddRow(key, value string) {
	t.rows = append(t.rows, [2]string{key, value})
}

// Render renders the key-value table. Multi-line values are indented
// under their first line.
func (t *KeyValueTable) Render() {
	keyWidth := 0
	for _, row := range t.rows {
		if w := lipgloss.Width(row[0]); w > keyWidth {
			keyWidth = w
		}
	}

	key := color.New(color.FgYellow)
	if t.noColor {
		key.DisableColor()
	}
	indent := strings.Repeat(" ", keyWidth+2)
	for _, row := range t.rows {
		label := row[0] + ":"
		key.Fprint(t.writer, label+strings.Repeat(" ", keyWidth+1-lipgloss.Width(label)))
		lines := strings.Split(row[1], "\n")
		fmt.Fprintf(t.writer, " %s\n", lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(t.writer, "%s%s\n", indent, line)
		}
	}
}

// Header renders a styled header
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgYellow)
	if noColor {
		bold.DisableColor()
	}
	bold.Fprintln(w, title)
	Divider(w, lipgloss.Width(title), noColor)
}

// Divider renders a horizontal divider line
func Divider(w io.Writer, width int, noColor bool) {
	if width == 0 {
		width = 80
	}
	gray := color.New(color.FgHiBlack)
	if noColor {
		gray.DisableColor()
	}
	gray.Fprintln(w, strings.Repeat("─", width))
}
