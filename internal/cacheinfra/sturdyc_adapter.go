package cacheinfra

import (
	"context"
	"strings"

	"github.com/viccon/sturdyc"
)

// sturdycService wraps a sturdyc client providing the bounded caching backend.
type sturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService creates a new sturdyc cache service adapter.
// It validates the configuration and initializes a sturdyc client with the provided settings.
func NewSturdycService(cfg Config) (*sturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Capacity == 0 {
		return nil, &ConfigError{Field: "Capacity", Message: "must be greater than 0 for the bounded backend"}
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycService{client: client}, nil
}

// nilValue stands in for a nil result; sturdyc rejects an untyped nil as an invalid type.
type nilValue struct{}

func box(value any) any {
	if value == nil {
		return nilValue{}
	}
	return value
}

func unbox(value any) any {
	if _, ok := value.(nilValue); ok {
		return nil
	}
	return value
}

// GetOrFetch returns the cached value for key or runs fetchFn and stores its result.
// sturdyc tracks in-flight fetches, so concurrent callers for the same key share one call.
// A failed fetch is never stored. The shared fetch runs detached from the caller's
// cancellation so one caller giving up does not fail the others waiting on it.
func (s *sturdycService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	value, err := s.client.GetOrFetch(context.WithoutCancel(ctx), key, func(ctx context.Context) (any, error) {
		v, err := fetchFn(ctx)
		return box(v), err
	})
	if err != nil {
		return nil, err
	}
	return unbox(value), nil
}

// Get returns the value stored under key without fetching.
func (s *sturdycService) Get(_ context.Context, key string) (any, bool) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false
	}
	return unbox(value), true
}

// Set stores value under key, replacing any previous entry.
func (s *sturdycService) Set(_ context.Context, key string, value any) error {
	s.client.Set(key, box(value))
	return nil
}

// Delete removes a single entry from the cache.
func (s *sturdycService) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix.
func (s *sturdycService) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Len returns the number of entries currently held.
func (s *sturdycService) Len() int {
	return len(s.client.ScanKeys())
}
