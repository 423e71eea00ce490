package explorer

import (
	"time"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/pkg/grid"
)

// TableJSON is the wire form of a rendered table. Page is 1-based.
type TableJSON struct {
	Collection string       `json:"collection"`
	Columns    []ColumnJSON `json:"columns"`
	Rows       []RowJSON    `json:"rows"`
	Query      string       `json:"query,omitempty"`
	Sort       string       `json:"sort,omitempty"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
	Matches    int          `json:"matches"`
	Total      int          `json:"total"`
	HasPrev    bool         `json:"has_prev"`
	HasNext    bool         `json:"has_next"`
	Message    string       `json:"message,omitempty"`
	Warning    string       `json:"warning,omitempty"`
}

// ColumnJSON is one header.
type ColumnJSON struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  string `json:"kind,omitempty"`
	// Sort is "asc" or "desc" on the sorted column.
	Sort string `json:"sort,omitempty"`
}

// RowJSON is one formatted row with its raw data.
type RowJSON struct {
	Key   string     `json:"key"`
	Cells []CellJSON `json:"cells"`
	Data  grid.Row   `json:"data"`
}

// CellJSON is one formatted cell.
type CellJSON struct {
	Kind  string     `json:"kind"`
	Text  string     `json:"text"`
	Bool  string     `json:"bool,omitempty"`
	Time  *time.Time `json:"time,omitempty"`
	Chips []ChipJSON `json:"chips,omitempty"`
}

// ChipJSON is one relation or file label.
type ChipJSON struct {
	Label string `json:"label"`
	Key   string `json:"key,omitempty"`
}

// NewTableJSON converts a rendered table of the named collection.
func NewTableJSON(name string, t grid.Table) TableJSON {
	out := TableJSON{
		Collection: name,
		Columns:    make([]ColumnJSON, len(t.Headers)),
		Rows:       make([]RowJSON, len(t.Rows)),
		Query:      t.Query,
		Sort:       t.Sort.Param(),
		Page:       t.Page + 1,
		PageSize:   t.PageSize,
		TotalPages: t.TotalPages,
		Matches:    t.Matches,
		Total:      t.Total,
		HasPrev:    t.HasPrev,
		HasNext:    t.HasNext,
		Message:    t.Message,
	}
	for i, h := range t.Headers {
		out.Columns[i] = ColumnJSON{Key: h.Key, Label: h.Label, Kind: string(h.Kind)}
		if h.Direction != grid.Unsorted {
			out.Columns[i].Sort = h.Direction.String()
		}
	}
	for i, r := range t.Rows {
		cells := make([]CellJSON, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = NewCellJSON(c)
		}
		out.Rows[i] = RowJSON{Key: r.Key, Cells: cells, Data: r.Row}
	}
	return out
}

// NewCellJSON converts one cell.
func NewCellJSON(c grid.Cell) CellJSON {
	out := CellJSON{Kind: c.Kind.String(), Text: c.Text}
	if c.Kind == grid.CellBool {
		out.Bool = c.Bool.String()
	}
	if c.Kind == grid.CellDate && !c.Time.IsZero() {
		t := c.Time
		out.Time = &t
	}
	for _, chip := range c.Chips {
		out.Chips = append(out.Chips, ChipJSON{Label: chip.Label, Key: chip.Key})
	}
	return out
}

// ItemJSON is the wire form of an item detail.
type ItemJSON struct {
	Collection string      `json:"collection"`
	ID         string      `json:"id"`
	Data       grid.Row    `json:"data"`
	Fields     []EntryJSON `json:"fields"`
}

// EntryJSON is one field of an item detail.
type EntryJSON struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

// NewItemJSON converts an item detail.
func NewItemJSON(item *Item) ItemJSON {
	out := ItemJSON{
		Collection: item.Collection,
		ID:         item.ID,
		Data:       item.Row,
		Fields:     make([]EntryJSON, len(item.Entries)),
	}
	for i, e := range item.Entries {
		out.Fields[i] = EntryJSON{Key: e.Key, Label: e.Label, Kind: e.Cell.Kind.String(), Text: e.Cell.Text}
	}
	return out
}

// CollectionsJSON lists collections.
type CollectionsJSON struct {
	Collections []source.Collection `json:"collections"`
}
