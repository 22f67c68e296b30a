package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidResultType is returned when a cached value cannot be converted to the requested type.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// KeySerializer builds a cache key from a namespace + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(namespace string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the read-through caching operations used by the catalog query layer.
//
// Implementations must not store the result of a fetch that returned an error, and should
// collapse concurrent fetches for the same key into a single call.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error)
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Len() int
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		return zero, err
	}

	return assertResult[T](key, result)
}

// Get returns the value stored under key, if any, converted to T.
// A stored value of a different type is reported as a miss.
func Get[T any](ctx context.Context, service CacheService, key string) (T, bool) {
	var zero T

	result, ok := service.Get(ctx, key)
	if !ok {
		return zero, false
	}

	value, err := assertResult[T](key, result)
	if err != nil {
		return zero, false
	}
	return value, true
}

func assertResult[T any](key string, result any) (T, error) {
	var zero T
	if result == nil {
		return zero, nil
	}

	value, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T", ErrInvalidResultType, key, result)
	}
	return value, nil
}
