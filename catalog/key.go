package catalog

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-catalog-cache/cache"
)

// Key namespaces. Every cache entry owned by the catalog starts with one of them.
const (
	PageNamespace      = "products"
	CandidateNamespace = "candidates"
	ProductNamespace   = "product"
)

// QueryKey is the canonical identity of a parameter set.
type QueryKey string

var defaultKeys = cache.NewCanonicalKeySerializer()

// Canonicalize derives the page cache key for p. Semantically identical parameter sets
// (same effective filters, ordering and window) yield the same key.
func Canonicalize(p QueryParams) QueryKey {
	return CanonicalizeWith(defaultKeys, p)
}

// CanonicalizeWith derives the page key using the given serializer.
func CanonicalizeWith(keys cache.KeySerializer, p QueryParams) QueryKey {
	return QueryKey(keys.SerializeKey(PageNamespace, p.Normalize()))
}

// CandidateKey identifies the sorted search candidate set p's page is sliced from.
// It ignores the page window, so every page of one search+sort combination shares it.
func CandidateKey(p QueryParams) QueryKey {
	return CandidateKeyWith(defaultKeys, p)
}

// CandidateKeyWith derives the candidate key using the given serializer.
// Search terms are free text of any length, so the scope is digested to a fixed size.
func CandidateKeyWith(keys cache.KeySerializer, p QueryParams) QueryKey {
	scope := p.Normalize()
	scope.Page, scope.Limit = 0, 0

	digest := xxhash.Sum64String(keys.SerializeKey(CandidateNamespace, scope))
	return QueryKey(fmt.Sprintf("%s%s%016x", CandidateNamespace, cache.KeySeparator, digest))
}

// ProductKey identifies a single product lookup.
func ProductKey(id ProductID) QueryKey {
	return QueryKey(defaultKeys.SerializeKey(ProductNamespace, string(id)))
}
