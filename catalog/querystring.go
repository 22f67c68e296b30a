package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query string keys recognized by Encode and Decode.
const (
	QueryCategory = "category"
	QuerySearch   = "search"
	QuerySortBy   = "sortBy"
	QueryOrder    = "order"
	QueryPage     = "page"
	// QueryLimit is only emitted when the page size differs from DefaultLimit.
	QueryLimit = "limit"
)

// Encode renders p as a URL query string. Absent fields are omitted rather than
// encoded as empty values; the page is always present.
func Encode(p QueryParams) string {
	return EncodeValues(p).Encode()
}

// EncodeValues renders p as url.Values.
func EncodeValues(p QueryParams) url.Values {
	p = p.Normalize()

	values := url.Values{}
	if p.Category != "" {
		values.Set(QueryCategory, p.Category)
	}
	if p.SearchTerm != "" {
		values.Set(QuerySearch, p.SearchTerm)
	}
	if p.SortField != SortNone {
		values.Set(QuerySortBy, string(p.SortField))
		values.Set(QueryOrder, string(p.SortDirection))
	}
	values.Set(QueryPage, strconv.Itoa(p.Page))
	if p.Limit != DefaultLimit {
		values.Set(QueryLimit, strconv.Itoa(p.Limit))
	}
	return values
}

// Decode parses a query string, with or without its leading '?'.
func Decode(raw string) (QueryParams, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return QueryParams{}, fmt.Errorf("%w: %w", ErrMalformedQuery, err)
	}
	return DecodeValues(values), nil
}

// DecodeValues builds parameters from already parsed values. Unknown keys are ignored,
// unsupported sort values are treated as absent and an absent or unparsable page is 1.
func DecodeValues(values url.Values) QueryParams {
	p := QueryParams{
		Category:   values.Get(QueryCategory),
		SearchTerm: values.Get(QuerySearch),
		Page:       positiveInt(values.Get(QueryPage), 1),
		Limit:      positiveInt(values.Get(QueryLimit), DefaultLimit),
	}

	if field, ok := ParseSortField(values.Get(QuerySortBy)); ok {
		p.SortField = field
	}
	if dir, ok := ParseSortDirection(values.Get(QueryOrder)); ok {
		p.SortDirection = dir
	}

	return p.Normalize()
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
