package engine

import (
	"github.com/roach88/provq/internal/provenance"
	"github.com/roach88/provq/internal/query"
)

// Page is one window of an ordered result set.
type Page struct {
	Page    int
	PerPage int
	Pages   int
	// Total counts matches after filtering, before paging.
	Total int
	Items []Entry
}

// Paginate slices one page out of ordered. PerPage is clamped to
// [1, query.MaxPerPage] and Page to [1, Pages]; out-of-range requests never
// fail. There is always at least one page, possibly empty.
func Paginate(ordered []Entry, q query.Query) Page {
	perPage := query.ClampPerPage(q.PerPage)
	total := len(ordered)

	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	items := []Entry{}
	if start < end {
		items = ordered[start:end]
	}

	return Page{
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		Total:   total,
		Items:   items,
	}
}

// Run filters, sorts and paginates p in one call.
func Run(p *provenance.Payload, q query.Query) Page {
	return Paginate(FilterAndSort(p, q), q)
}
