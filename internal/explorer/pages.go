package explorer

import (
	"net/url"

	"github.com/conduit-lang/explorer/internal/source"
	"github.com/conduit-lang/explorer/internal/web/query"
	"github.com/conduit-lang/explorer/pkg/grid"
)

type layoutData struct {
	Theme Theme
	Title string
}

type collectionsPage struct {
	layoutData
	Collections []collectionLink
}

type collectionLink struct {
	Name string
	Href string
	Note string
}

type collectionPage struct {
	layoutData
	Name    string
	Table   grid.Table
	Headers []headerLink
	Rows    []rowLink
	Warning string

	// Form state carried through a filter submit.
	Query     string
	SortParam string
	PerPage   int

	PrevHref string
	NextHref string
	IndexURL string
}

type headerLink struct {
	Label     string
	Indicator string
	Href      string
	AriaSort  string
	Numeric   bool
}

type rowLink struct {
	Href  string
	Cells []grid.Cell
}

type itemPage struct {
	layoutData
	Collection    string
	ID            string
	Entries       []Entry
	CollectionURL string
	IndexURL      string
}

type errorPage struct {
	layoutData
	Status  int
	Message string
}

func collectionsURL() string { return "/collections" }

func collectionURL(name string) string {
	return "/collections/" + url.PathEscape(name)
}

func itemURL(name, id string) string {
	return collectionURL(name) + "/" + url.PathEscape(id)
}

func newCollectionsPage(theme Theme, collections []source.Collection) collectionsPage {
	p := collectionsPage{layoutData: layoutData{Theme: theme, Title: "Collections"}}
	for _, c := range collections {
		p.Collections = append(p.Collections, collectionLink{
			Name: c.Name,
			Href: collectionURL(c.Name),
			Note: c.Note,
		})
	}
	return p
}

func newCollectionPage(theme Theme, c *Collection, t grid.Table, params query.ViewParams) collectionPage {
	base := collectionURL(c.Name)
	p := collectionPage{
		layoutData: layoutData{Theme: theme, Title: c.Name},
		Name:       c.Name,
		Table:      t,
		Warning:    c.Warning,
		Query:      t.Query,
		SortParam:  t.Sort.Param(),
		PerPage:    params.PageSize,
		IndexURL:   collectionsURL(),
	}

	// Links are built from the rendered state so a clamped page or a
	// trimmed query is what the next click starts from.
	state := params
	state.Query = t.Query
	state.Sort = t.Sort
	state.Page = t.Page

	for _, h := range t.Headers {
		link := headerLink{
			Label:     h.Label,
			Indicator: h.Indicator,
			Href:      base + state.WithSortToggled(h.Key).Encode(),
			AriaSort:  "none",
			Numeric:   h.Kind.IsNumeric(),
		}
		switch h.Direction {
		case grid.Ascending:
			link.AriaSort = "ascending"
		case grid.Descending:
			link.AriaSort = "descending"
		}
		p.Headers = append(p.Headers, link)
	}
	for _, r := range t.Rows {
		p.Rows = append(p.Rows, rowLink{Href: itemURL(c.Name, r.Key), Cells: r.Cells})
	}
	if t.HasPrev {
		p.PrevHref = base + state.WithPage(t.Page-1).Encode()
	}
	if t.HasNext {
		p.NextHref = base + state.WithPage(t.Page+1).Encode()
	}
	return p
}

func newItemPage(theme Theme, item *Item) itemPage {
	return itemPage{
		layoutData:    layoutData{Theme: theme, Title: item.Collection + " / " + item.ID},
		Collection:    item.Collection,
		ID:            item.ID,
		Entries:       item.Entries,
		CollectionURL: collectionURL(item.Collection),
		IndexURL:      collectionsURL(),
	}
}
