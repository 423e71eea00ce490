// Package grid is a tabular view engine for untyped records.
//
// A View takes rows that were already fetched from somewhere else and runs
// them through three pure stages on every state change:
//
//	Filter → Sort → Paginate
//
// and then formats each visible cell by the declared kind of its column.
// Nothing in this package performs I/O, starts goroutines or returns an
// error for any input. The worst outcome for odd data is an empty state
// or an empty-marker cell.
package grid
