// Package catalogcache is the read-through query service over a product catalog.
//
// A Service answers product listing requests from a cache.CacheService keyed by the
// canonical form of the request parameters, and falls back to a catalog.ProductSource
// on a miss. Two retrieval paths exist:
//
//   - browse: no search term. Category, sort and the skip/limit window are forwarded
//     to the source, which is trusted to apply them.
//   - search: a search term is present. The full candidate set (up to the candidate
//     limit) is fetched once per search+sort combination, sorted locally with a stable
//     sort and sliced into pages. The sorted set is kept in the cache so the other pages
//     of the same search are sliced without another fetch.
//
// Failed fetches never populate the cache. Concurrent requests for the same key share
// one fetch through the cache backend.
//
// Categories are fetched once, validated and memoized for the lifetime of the Service.
//
// Session tracks a single client's navigation and discards responses that arrive after
// a newer request was issued.
//
// Basic usage:
//
//	cacheService, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	svc := catalogcache.New(source, source, cacheService,
//		catalogcache.WithLogger(logger),
//	)
//
//	page, err := svc.Products(ctx, catalog.QueryParams{SearchTerm: "phone", SortField: catalog.SortPrice})
package catalogcache
