package grid

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterStats reports what the filter stage could not inspect.
type FilterStats struct {
	// Skipped counts column values that failed to serialize and were
	// treated as non-matching.
	Skipped int
}

// Filter keeps the rows where any column's value contains query,
// ignoring case. A blank query keeps every row. Relative order is kept.
func Filter(rows []Row, columns []Column, query string) []Row {
	out, _ := FilterWithStats(rows, columns, query)
	return out
}

// FilterWithStats is Filter plus a count of values that could not be
// serialized. Such a value never matches, but the rest of its row is
// still checked.
func FilterWithStats(rows []Row, columns []Column, query string) ([]Row, FilterStats) {
	var stats FilterStats

	if strings.TrimSpace(query) == "" {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out, stats
	}

	// Only a blank query is special; otherwise surrounding spaces are
	// part of the needle.
	folder := cases.Fold()
	needle := folder.String(query)

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		for _, col := range columns {
			v, ok := row.Get(col.Key)
			if !ok || v == nil {
				continue
			}
			s, err := Stringify(v)
			if err != nil {
				stats.Skipped++
				continue
			}
			if strings.Contains(folder.String(s), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out, stats
}
