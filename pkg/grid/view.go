package grid

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// KeyFunc returns the identity of a row, used to build detail links.
// index is the row's position in the filtered and sorted result.
type KeyFunc func(row Row, index int) string

// Options configures a View.
type Options struct {
	// PageSize is the number of rows per page. Zero means DefaultPageSize.
	PageSize int
	// EmptyMessage is shown when there is nothing to build a table from.
	EmptyMessage string
	// NoMatchesMessage is shown when the current page has no rows.
	NoMatchesMessage string
	// KeyOf identifies rows. Nil uses the "id" field, then the index.
	KeyOf KeyFunc
	// Formatter formats cells. Nil uses NewFormatter().
	Formatter *Formatter
	// Compare orders sort keys. Nil uses a locale collator.
	Compare Comparator
	// Logger receives debug output about skipped values. Nil discards it.
	Logger *zap.Logger
}

// DefaultOptions returns the options NewView falls back to.
func DefaultOptions() Options {
	return Options{
		PageSize:         DefaultPageSize,
		EmptyMessage:     "No data",
		NoMatchesMessage: "No rows",
		KeyOf:            KeyByField("id"),
		Formatter:        NewFormatter(),
		Logger:           zap.NewNop(),
	}
}

// KeyByField returns a KeyFunc reading field, falling back to the index
// when the field is absent or null.
func KeyByField(field string) KeyFunc {
	return func(row Row, index int) string {
		if v, ok := row.Get(field); ok && v != nil {
			if s, err := Stringify(v); err == nil && s != "" {
				return s
			}
		}
		return strconv.Itoa(index)
	}
}

// View holds the filter, sort and page state of one table and recomputes
// Filter → Sort → Paginate → Format on every Render.
//
// A View is not safe for concurrent use; each table instance owns its own.
type View struct {
	rows    []Row
	columns []Column
	opts    Options

	query string
	sort  SortState
	page  int
}

// NewView creates a view over rows. Columns are resolved with
// ResolveColumns, so nil columns are inferred from the first row.
func NewView(rows []Row, columns []Column, opts Options) *View {
	def := DefaultOptions()
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = def.EmptyMessage
	}
	if opts.NoMatchesMessage == "" {
		opts.NoMatchesMessage = def.NoMatchesMessage
	}
	if opts.KeyOf == nil {
		opts.KeyOf = def.KeyOf
	}
	if opts.Formatter == nil {
		opts.Formatter = def.Formatter
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}

	return &View{
		rows:    rows,
		columns: ResolveColumns(rows, columns),
		opts:    opts,
	}
}

// Columns returns the resolved columns.
func (v *View) Columns() []Column { return v.columns }

// Query returns the current filter text.
func (v *View) Query() string { return v.query }

// SortState returns the current sort.
func (v *View) SortState() SortState { return v.sort }

// Page returns the current zero-based page.
func (v *View) Page() int { return v.page }

// PageSize returns the configured page size.
func (v *View) PageSize() int { return v.opts.PageSize }

// SetFilter changes the filter text. A change resets the page to 0.
func (v *View) SetFilter(query string) {
	if query == v.query {
		return
	}
	v.query = query
	v.page = 0
}

// ToggleSort applies a header click on key and resets the page to 0.
func (v *View) ToggleSort(key string) {
	v.sort = v.sort.Toggle(key)
	v.page = 0
}

// SetSort replaces the sort state. A change resets the page to 0.
func (v *View) SetSort(state SortState) {
	if state.IsNone() {
		state = SortState{}
	}
	if state == v.sort {
		return
	}
	v.sort = state
	v.page = 0
}

// SetPage moves to page, clamped to the current result.
func (v *View) SetPage(page int) {
	v.page = ClampPage(page, TotalPages(len(v.result()), v.opts.PageSize))
}

// NextPage moves forward one page if possible.
func (v *View) NextPage() { v.SetPage(v.page + 1) }

// PrevPage moves back one page if possible.
func (v *View) PrevPage() { v.SetPage(v.page - 1) }

// Result returns every row that passes the filter, in sorted order.
func (v *View) Result() []Row { return v.result() }

func (v *View) result() []Row {
	filtered, stats := FilterWithStats(v.rows, v.columns, v.query)
	if stats.Skipped > 0 {
		v.opts.Logger.Debug("filter skipped unserializable values",
			zap.String("query", v.query),
			zap.Int("skipped", stats.Skipped),
		)
	}
	return Sort(filtered, v.sort, v.opts.Compare)
}

// Render runs the pipeline and returns the page to display.
func (v *View) Render() Table {
	t := Table{
		Query:    v.query,
		Sort:     v.sort,
		PageSize: v.opts.PageSize,
		Total:    len(v.rows),
	}

	t.Headers = make([]HeaderCell, len(v.columns))
	for i, col := range v.columns {
		h := HeaderCell{Key: col.Key, Label: col.Label(), Kind: col.Kind}
		h.Indicator = v.sort.Indicator(col.Key)
		if !v.sort.IsNone() && v.sort.Key == col.Key {
			h.Direction = v.sort.Direction
		}
		t.Headers[i] = h
	}

	if len(v.rows) == 0 || len(v.columns) == 0 {
		t.Empty = true
		t.Message = v.opts.EmptyMessage
		t.TotalPages = 1
		v.page = 0
		return t
	}

	sorted := v.result()
	t.Matches = len(sorted)
	t.TotalPages = TotalPages(len(sorted), v.opts.PageSize)
	v.page = ClampPage(v.page, t.TotalPages)
	t.Page = v.page
	t.HasPrev = t.Page > 0
	t.HasNext = t.Page < t.TotalPages-1

	visible := Paginate(sorted, t.Page, v.opts.PageSize)
	t.Rows = make([]TableRow, len(visible))
	offset := t.Page * v.opts.PageSize
	for i, row := range visible {
		cells := make([]Cell, len(v.columns))
		for j, col := range v.columns {
			cells[j] = v.opts.Formatter.Cell(col, row)
		}
		t.Rows[i] = TableRow{
			Key:   v.opts.KeyOf(row, offset+i),
			Cells: cells,
			Row:   row,
		}
	}

	if len(t.Rows) == 0 {
		t.NoMatches = true
		t.Message = v.opts.NoMatchesMessage
	}
	return t
}

// HeaderCell is one column header.
type HeaderCell struct {
	Key       string
	Label     string
	Kind      Kind
	Direction Direction
	// Indicator is " ▲", " ▼" or "" depending on the sort.
	Indicator string
}

// TableRow is one formatted row.
type TableRow struct {
	Key   string
	Cells []Cell
	Row   Row
}

// Table is the output of View.Render.
type Table struct {
	Headers []HeaderCell
	Rows    []TableRow

	Query    string
	Sort     SortState
	Page     int
	PageSize int
	// TotalPages is at least 1.
	TotalPages int
	// Matches is the filtered row count; Total is the input row count.
	Matches int
	Total   int

	HasPrev bool
	HasNext bool

	// Empty means the view was given no rows, or no columns to render.
	Empty bool
	// NoMatches means the table has columns but the page has no rows.
	NoMatches bool
	// Message is the text to show in place of rows when Empty or NoMatches.
	Message string
}

// MatchLabel returns "1 match" or "N matches".
func (t Table) MatchLabel() string {
	if t.Matches == 1 {
		return "1 match"
	}
	return fmt.Sprintf("%d matches", t.Matches)
}

// PageLabel returns "Page X / N" with a one-based X.
func (t Table) PageLabel() string {
	return fmt.Sprintf("Page %d / %d", t.Page+1, t.TotalPages)
}
