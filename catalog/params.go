package catalog

import (
	"fmt"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 20
	// MaxLimit bounds both the page size and the search candidate set.
	MaxLimit = 3000
	// MaxPage is the largest page whose offset fits an int at any valid limit.
	MaxPage = math.MaxInt / MaxLimit
)

// SortField names the product attribute a listing is ordered by.
type SortField string

const (
	SortNone   SortField = ""
	SortPrice  SortField = "price"
	SortRating SortField = "rating"
)

// ParseSortField returns the field named by s, or false when s is not a supported field.
func ParseSortField(s string) (SortField, bool) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortPrice, SortRating:
		return f, true
	default:
		return SortNone, false
	}
}

// SortDirection is the ordering direction for a SortField.
type SortDirection string

const (
	DirectionNone SortDirection = ""
	Ascending     SortDirection = "asc"
	Descending    SortDirection = "desc"
)

// ParseSortDirection returns the direction named by s, or false when s is not a direction.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case Ascending, Descending:
		return d, true
	default:
		return DirectionNone, false
	}
}

// Mode selects how a product window is retrieved.
type Mode uint8

const (
	// ModeBrowse delegates filtering, ordering and pagination to the remote source.
	ModeBrowse Mode = iota
	// ModeSearch pulls the full candidate set for a search term, sorts and slices it locally.
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "browse"
	case ModeSearch:
		return "search"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// MarshalText renders the mode name, used by JSON responses.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name written by MarshalText.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "browse":
		*m = ModeBrowse
	case "search":
		*m = ModeSearch
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// QueryParams describes a product listing request.
//
// The key tags name each field inside the canonical cache key.
type QueryParams struct {
	Category      string        `key:"category"`
	SearchTerm    string        `key:"search"`
	SortField     SortField     `key:"sortBy"`
	SortDirection SortDirection `key:"order"`
	Page          int           `key:"page"`
	Limit         int           `key:"limit"`
}

// Normalize returns the canonical form of p. Two parameter sets that select the same
// products in the same order normalize to the same value.
func (p QueryParams) Normalize() QueryParams {
	n := QueryParams{
		Category:   strings.TrimSpace(p.Category),
		SearchTerm: strings.TrimSpace(p.SearchTerm),
		Page:       p.Page,
		Limit:      p.Limit,
	}

	if field, ok := ParseSortField(string(p.SortField)); ok {
		n.SortField = field
		n.SortDirection = Descending
		if dir, ok := ParseSortDirection(string(p.SortDirection)); ok {
			n.SortDirection = dir
		}
	}

	if n.Page < 1 {
		n.Page = 1
	}
	if n.Limit < 1 {
		n.Limit = DefaultLimit
	}
	return n
}

// Validate checks the parameter ranges. Call it on normalized parameters.
func (p QueryParams) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Required, validation.Min(1), validation.Max(MaxPage)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxLimit)),
		validation.Field(&p.SortField, validation.In(SortPrice, SortRating)),
		validation.Field(&p.SortDirection, validation.In(Ascending, Descending)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// Mode reports which retrieval path serves p.
func (p QueryParams) Mode() Mode {
	if strings.TrimSpace(p.SearchTerm) != "" {
		return ModeSearch
	}
	return ModeBrowse
}

// Offset is the index of the first product of the requested page.
func (p QueryParams) Offset() int {
	n := p.Normalize()
	if n.Page-1 > math.MaxInt/n.Limit {
		return math.MaxInt
	}
	return (n.Page - 1) * n.Limit
}

// WithPage returns a copy of p pointing at page.
func (p QueryParams) WithPage(page int) QueryParams {
	p.Page = page
	return p
}
