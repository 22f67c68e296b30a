// Package cache provides the caching contracts and key canonicalization used by the
// catalog query layer.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: a read-through cache keyed by strings
//   - KeySerializer: builds canonical cache keys from a namespace and arguments
//
// # Basic Usage
//
//	serializer := cache.NewCanonicalKeySerializer()
//	key := serializer.SerializeKey("products", params)
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	page, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (Page, error) {
//		return source.Fetch(ctx, params)
//	})
//
// # Key Canonicalization
//
// The canonical serializer exists so that two argument values describing the same query
// always produce the same key:
//
//   - Structs: exported, non-zero fields rendered as name=value, sorted by name.
//     The name comes from the `key` struct tag when present.
//   - Maps: entries sorted by serialized key, zero values dropped
//   - Slices/arrays: element order is kept
//   - Strings: query-escaped, so user text cannot forge the "::" separator
//   - encoding.TextMarshaler values (decimals, timestamps): their text form
//   - Function pointers and channels: %p, stable only within one process
//
// Dropping zero fields is what makes an empty filter and an absent filter equivalent.
//
// # Backends
//
// NewCacheService picks a backend from Config:
//
//   - Capacity == 0: unbounded map, no expiry, per-key in-flight de-duplication
//   - Capacity > 0: sturdyc, sharded and size-limited with TTL and percentage eviction
//
// Neither backend stores the result of a fetch that failed.
package cache
