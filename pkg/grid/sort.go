package grid

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the order of a sorted column.
type Direction int

const (
	// Unsorted leaves rows in filtered order.
	Unsorted Direction = iota
	// Ascending sorts a→z.
	Ascending
	// Descending sorts z→a.
	Descending
)

// String returns the direction name used in URLs and logs.
func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// SortState is the active sort column and direction. The zero value means
// no sorting.
type SortState struct {
	Key       string
	Direction Direction
}

// IsNone reports whether no sort is active.
func (s SortState) IsNone() bool {
	return s.Key == "" || s.Direction == Unsorted
}

// Toggle returns the state after the header for key is clicked:
// none or another key → ascending → descending → none.
func (s SortState) Toggle(key string) SortState {
	if s.IsNone() || s.Key != key {
		return SortState{Key: key, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{}
}

// Indicator returns the header suffix for the column named key.
func (s SortState) Indicator(key string) string {
	if s.IsNone() || s.Key != key {
		return ""
	}
	if s.Direction == Ascending {
		return " ▲"
	}
	return " ▼"
}

// ParseSort reads the query-string form of a sort state: "name" for
// ascending, "-name" for descending, "" for none.
func ParseSort(param string) SortState {
	switch {
	case param == "" || param == "-":
		return SortState{}
	case param[0] == '-':
		return SortState{Key: param[1:], Direction: Descending}
	default:
		return SortState{Key: param, Direction: Ascending}
	}
}

// Param is the inverse of ParseSort.
func (s SortState) Param() string {
	switch {
	case s.IsNone():
		return ""
	case s.Direction == Descending:
		return "-" + s.Key
	default:
		return s.Key
	}
}

// Comparator orders two sort keys, returning -1, 0 or 1.
type Comparator func(a, b string) int

// CollatorComparator returns a locale-aware comparator for tag. The
// collator it wraps keeps scratch buffers, so the comparator must not be
// shared between goroutines.
func CollatorComparator(tag language.Tag) Comparator {
	c := collate.New(tag)
	return c.CompareString
}

// Sort returns rows ordered by state using compare, or by an undetermined
// locale collator when compare is nil. Ties keep their input order. The
// input slice is not modified.
func Sort(rows []Row, state SortState, compare Comparator) []Row {
	if state.IsNone() || len(rows) < 2 {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out
	}
	if compare == nil {
		compare = CollatorComparator(language.Und)
	}

	sortKeys := make([]string, len(rows))
	idx := make([]int, len(rows))
	for i, row := range rows {
		v, _ := row.Get(state.Key)
		sortKeys[i] = SortKey(v)
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		c := compare(sortKeys[idx[i]], sortKeys[idx[j]])
		if state.Direction == Descending {
			return c > 0
		}
		return c < 0
	})

	out := make([]Row, len(rows))
	for i, k := range idx {
		out[i] = rows[k]
	}
	return out
}
