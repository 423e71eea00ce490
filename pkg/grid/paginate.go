package grid

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 25

// TotalPages returns the page count for count rows. It is never below 1,
// so an empty result still has a page 0 to show the empty state on.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage forces page into [0, totalPages-1].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		return 0
	}
	if page > totalPages-1 {
		return totalPages - 1
	}
	return page
}

// Paginate returns rows[page*pageSize : page*pageSize+pageSize], clipped
// to the slice bounds. The page is clamped first.
func Paginate(rows []Row, page, pageSize int) []Row {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page = ClampPage(page, TotalPages(len(rows), pageSize))

	start := page * pageSize
	if start >= len(rows) {
		return []Row{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]Row, end-start)
	copy(out, rows[start:end])
	return out
}
