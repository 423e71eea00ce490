// Package query reads and writes the view state carried in a collection
// page's URL: ?q=<filter>&sort=[-]<column>&page=<n>.
package query

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/conduit-lang/explorer/pkg/grid"
)

// Parameter names.
const (
	ParamQuery = "q"
	ParamSort  = "sort"
	ParamPage  = "page"
	ParamSize  = "per_page"
)

// ViewParams is the URL-encoded state of one table view.
type ViewParams struct {
	Query string
	Sort  grid.SortState
	// Page is 1-based in URLs and 0-based here.
	Page int
	// PageSize is 0 when the URL does not override it.
	PageSize int
}

// Parse reads view state from r. Malformed numbers fall back to the
// defaults rather than failing the request.
func Parse(r *http.Request) ViewParams {
	return ParseValues(r.URL.Query())
}

// ParseValues reads view state from v.
func ParseValues(v url.Values) ViewParams {
	p := ViewParams{
		Query: v.Get(ParamQuery),
		Sort:  grid.ParseSort(strings.TrimSpace(v.Get(ParamSort))),
	}
	if n, err := strconv.Atoi(v.Get(ParamPage)); err == nil && n > 1 {
		p.Page = n - 1
	}
	if n, err := strconv.Atoi(v.Get(ParamSize)); err == nil && n > 0 && n <= 500 {
		p.PageSize = n
	}
	return p
}

// Values encodes p, omitting defaults.
func (p ViewParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set(ParamQuery, p.Query)
	}
	if s := p.Sort.Param(); s != "" {
		v.Set(ParamSort, s)
	}
	if p.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(p.Page+1))
	}
	if p.PageSize > 0 {
		v.Set(ParamSize, strconv.Itoa(p.PageSize))
	}
	return v
}

// Encode returns p as a query string with a leading "?", or "".
func (p ViewParams) Encode() string {
	if s := p.Values().Encode(); s != "" {
		return "?" + s
	}
	return ""
}

// WithSortToggled returns the state after clicking the header of key:
// the sort cycles and the page resets.
func (p ViewParams) WithSortToggled(key string) ViewParams {
	p.Sort = p.Sort.Toggle(key)
	p.Page = 0
	return p
}

// WithPage returns the state showing page (0-based).
func (p ViewParams) WithPage(page int) ViewParams {
	if page < 0 {
		page = 0
	}
	p.Page = page
	return p
}

// Apply pushes p onto view in the order filter, sort, page so the page
// is clamped against the final result.
func (p ViewParams) Apply(view *grid.View) {
	view.SetFilter(p.Query)
	view.SetSort(p.Sort)
	view.SetPage(p.Page)
}
