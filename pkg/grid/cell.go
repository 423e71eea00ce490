package grid

import "time"

// EmptyMarker is shown for null, missing and unrenderable values.
const EmptyMarker = "—"

// CellKind tells a renderer which visual treatment a cell needs.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellBool
	CellDate
	CellJSON
	CellFile
	CellChips
)

// String returns the kind name, used as a CSS class suffix by renderers.
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellBool:
		return "bool"
	case CellDate:
		return "date"
	case CellJSON:
		return "json"
	case CellFile:
		return "file"
	case CellChips:
		return "chips"
	default:
		return "empty"
	}
}

// BoolState is the tri-state value of a boolean cell. Unknown is never
// folded into False.
type BoolState int

const (
	BoolUnknown BoolState = iota
	BoolTrue
	BoolFalse
)

// String returns "true", "false" or "unknown".
func (b BoolState) String() string {
	switch b {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Chip is one labeled token of a relation or multi-file cell.
type Chip struct {
	Label string
	// Key is the related item's id when it has one.
	Key string
}

// Cell is the display form of one value.
type Cell struct {
	Kind CellKind
	// Text is a plain-text rendering that is always set, so renderers
	// without special treatment for a kind can print it directly.
	Text string
	// Bool is set for CellBool.
	Bool BoolState
	// Time is set for CellDate when the value parsed.
	Time time.Time
	// Chips is set for CellChips and CellFile.
	Chips []Chip
}

// String returns Text.
func (c Cell) String() string {
	return c.Text
}

// IsEmpty reports whether the cell shows only the empty marker.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellChips && len(c.Chips) == 0)
}

// TextCell returns a plain text cell. RenderFunc implementations use it.
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

func emptyCell(marker string) Cell {
	return Cell{Kind: CellEmpty, Text: marker}
}
