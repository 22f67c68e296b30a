package catalog

import (
	"cmp"
	"slices"
)

// SortProducts returns a new slice holding products ordered by field and direction.
//
// The sort is stable: products with equal keys keep their input order. An absent or
// unsupported field keeps the input order. An absent direction sorts descending.
// The input slice is never reordered.
func SortProducts(products []Product, field SortField, direction SortDirection) []Product {
	sorted := slices.Clone(products)

	compare := comparator(field)
	if compare == nil {
		return sorted
	}

	if direction != Ascending {
		asc := compare
		compare = func(a, b Product) int { return asc(b, a) }
	}

	slices.SortStableFunc(sorted, compare)
	return sorted
}

func comparator(field SortField) func(a, b Product) int {
	switch field {
	case SortPrice:
		return func(a, b Product) int { return a.Price.Cmp(b.Price) }
	case SortRating:
		return func(a, b Product) int { return cmp.Compare(a.Rating, b.Rating) }
	default:
		return nil
	}
}

// Window returns the bounds [start, end) of page within a collection of total items.
func Window(total, page, limit int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total = max(total, 0)
	if page-1 > total/limit {
		return total, total
	}
	start = min((page-1)*limit, total)
	end = start + min(limit, total-start)
	return start, end
}

// Paginate slices the requested page out of an already ordered collection.
// Pages past the end are empty.
func Paginate(products []Product, page, limit int) []Product {
	start, end := Window(len(products), page, limit)
	return slices.Clone(products[start:end])
}

// Page is one window of a product listing.
type Page struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Mode     Mode      `json:"mode"`
	// Total is the size of the candidate set in search mode; zero when unknown (browse mode).
	Total   int  `json:"total,omitempty"`
	HasNext bool `json:"hasNext"`
}

// Clone returns a copy of the page that does not share its product slice.
func (pg Page) Clone() Page {
	pg.Products = slices.Clone(pg.Products)
	return pg
}

// NewBrowsePage wraps a page returned by the remote source. Whether a next page exists
// is inferred from a full window, since the remote does not report a total.
func NewBrowsePage(p QueryParams, products []Product) Page {
	p = p.Normalize()
	return Page{
		Products: products,
		Page:     p.Page,
		Limit:    p.Limit,
		Mode:     ModeBrowse,
		HasNext:  len(products) >= p.Limit,
	}
}

// NewSearchPage slices p's window out of the sorted candidate set.
func NewSearchPage(p QueryParams, candidates []Product) Page {
	p = p.Normalize()
	_, end := Window(len(candidates), p.Page, p.Limit)
	return Page{
		Products: Paginate(candidates, p.Page, p.Limit),
		Page:     p.Page,
		Limit:    p.Limit,
		Mode:     ModeSearch,
		Total:    len(candidates),
		HasNext:  end < len(candidates),
	}
}
