package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/conduit-lang/explorer/pkg/grid"
)

// GridOptions configures RenderGrid.
type GridOptions struct {
	NoColor      bool
	MaxCellWidth int
}

// RenderGrid prints a rendered table with its sort indicators, the match
// count and the page position.
func RenderGrid(w io.Writer, t grid.Table, opts GridOptions) {
	muted := color.New(color.FgHiBlack)
	if opts.NoColor {
		muted.DisableColor()
	}
	if t.Empty {
		muted.Fprintln(w, t.Message)
		return
	}

	headers := make([]string, len(t.Headers))
	right := map[int]bool{}
	for i, h := range t.Headers {
		headers[i] = h.Label + h.Indicator
		if h.Kind.IsNumeric() {
			right[i] = true
		}
	}

	table := NewTable(w, headers, &TableOptions{NoColor: opts.NoColor, MaxCellWidth: opts.MaxCellWidth, RightAlign: right})
	for _, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = CellText(c, opts.NoColor)
		}
		table.AddRow(cells...)
	}
	table.Render()

	if t.NoMatches {
		muted.Fprintln(w, t.Message)
	}
	muted.Fprintf(w, "%s · %s\n", t.MatchLabel(), t.PageLabel())
}

// CellText renders one cell for a terminal: booleans become colored
// ticks and empty markers are dimmed.
func CellText(c grid.Cell, noColor bool) string {
	paint := func(s string, attrs ...color.Attribute) string {
		col := color.New(attrs...)
		if noColor {
			col.DisableColor()
		}
		return col.Sprint(s)
	}

	switch c.Kind {
	case grid.CellBool:
		switch c.Bool {
		case grid.BoolTrue:
			return paint("✓", color.FgGreen)
		case grid.BoolFalse:
			return paint("✗", color.FgRed)
		}
		return paint(c.Text, color.FgHiBlack)
	case grid.CellEmpty:
		return paint(c.Text, color.FgHiBlack)
	case grid.CellChips, grid.CellFile:
		if len(c.Chips) == 0 {
			return paint(c.Text, color.FgHiBlack)
		}
		return paint(c.Text, color.FgCyan)
	}
	return c.Text
}

// PageHint describes how to reach the neighbouring pages.
func PageHint(t grid.Table) string {
	switch {
	case t.HasPrev && t.HasNext:
		return fmt.Sprintf("--page %d / --page %d", t.Page, t.Page+2)
	case t.HasNext:
		return fmt.Sprintf("--page %d", t.Page+2)
	case t.HasPrev:
		return fmt.Sprintf("--page %d", t.Page)
	}
	return ""
}
