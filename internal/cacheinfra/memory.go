package cacheinfra

import (
	"context"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// memoryService is the unbounded backend: entries are never evicted or expired.
type memoryService struct {
	entries  *xsync.MapOf[string, any]
	inflight singleflight.Group
}

// NewMemoryService creates an unbounded in-memory cache service.
func NewMemoryService() *memoryService {
	return &memoryService{
		entries: xsync.NewMapOf[string, any](),
	}
}

// GetOrFetch returns the cached value for key or runs fetchFn once for all concurrent
// callers of the same key. The fetch keeps the values of the caller that started it but
// not its cancellation, so callers still waiting on it are not failed by that caller leaving.
func (m *memoryService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	if value, ok := m.entries.Load(key); ok {
		return value, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	value, err, _ := m.inflight.Do(key, func() (any, error) {
		// A fetch for this key may have completed between Load and Do.
		if value, ok := m.entries.Load(key); ok {
			return value, nil
		}

		value, err := fetchFn(fetchCtx)
		if err != nil {
			return nil, err
		}
		m.entries.Store(key, value)
		return value, nil
	})
	return value, err
}

// Get returns the value stored under key without fetching.
func (m *memoryService) Get(_ context.Context, key string) (any, bool) {
	return m.entries.Load(key)
}

// Set stores value under key, replacing any previous entry.
func (m *memoryService) Set(_ context.Context, key string, value any) error {
	m.entries.Store(key, value)
	return nil
}

// Delete removes a single entry.
func (m *memoryService) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix.
func (m *memoryService) DeleteByPrefix(_ context.Context, prefix string) error {
	m.entries.Range(func(key string, _ any) bool {
		if strings.HasPrefix(key, prefix) {
			m.entries.Delete(key)
		}
		return true
	})
	return nil
}

// Len returns the number of entries currently held.
func (m *memoryService) Len() int {
	return m.entries.Size()
}
