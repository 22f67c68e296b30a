package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockCacheService stores entries in a plain map and records fetch calls.
type mockCacheService struct {
	mu      sync.Mutex
	entries map[string]any
	fetches int
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{entries: make(map[string]any)}
}

func (m *mockCacheService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.entries[key]; ok {
		return v, nil
	}
	m.fetches++
	v, err := fetchFn(ctx)
	if err != nil {
		return nil, err
	}
	m.entries[key] = v
	return v, nil
}

func (m *mockCacheService) Get(ctx context.Context, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *mockCacheService) Set(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *mockCacheService) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mockCacheService) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *mockCacheService) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestGetOrFetch_NilInterfaceResult(t *testing.T) {
	mock := newMockCacheService()

	type SomeInterface interface {
		DoSomething() string
	}

	result, err := GetOrFetch[SomeInterface](context.Background(), mock, "test-key", func(ctx context.Context) (SomeInterface, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}

	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_NilPointerResult(t *testing.T) {
	mock := newMockCacheService()

	result, err := GetOrFetch[*string](context.Background(), mock, "test-key", func(ctx context.Context) (*string, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}

	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_TypeAssertionFailure(t *testing.T) {
	mock := newMockCacheService()
	_ = mock.Set(context.Background(), "test-key", "wrong-type")

	result, err := GetOrFetch[int](context.Background(), mock, "test-key", func(ctx context.Context) (int, error) {
		return 42, nil
	})

	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType but got: %v", err)
	}

	if result != 0 {
		t.Errorf("expected zero value (0) but got: %v", result)
	}
}

func TestGetOrFetch_ValidResult(t *testing.T) {
	mock := newMockCacheService()
	expectedValue := "test-value"

	for range 2 {
		result, err := GetOrFetch[string](context.Background(), mock, "test-key", func(ctx context.Context) (string, error) {
			return expectedValue, nil
		})
		if err != nil {
			t.Fatalf("expected no error but got: %v", err)
		}
		if result != expectedValue {
			t.Errorf("expected '%s' but got: '%s'", expectedValue, result)
		}
	}

	if mock.fetches != 1 {
		t.Errorf("expected 1 fetch, got %d", mock.fetches)
	}
}

func TestGetOrFetch_FetchError(t *testing.T) {
	mock := newMockCacheService()
	fetchErr := errors.New("source unavailable")

	_, err := GetOrFetch[string](context.Background(), mock, "test-key", func(ctx context.Context) (string, error) {
		return "", fetchErr
	})

	if !errors.Is(err, fetchErr) {
		t.Errorf("expected fetch error but got: %v", err)
	}

	if mock.Len() != 0 {
		t.Errorf("failed fetch should not be stored, got %d entries", mock.Len())
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	mock := newMockCacheService()
	_ = mock.Set(ctx, "count", 7)

	if v, ok := Get[int](ctx, mock, "count"); !ok || v != 7 {
		t.Errorf("Get[int]() = %v, %v, want 7, true", v, ok)
	}

	if _, ok := Get[string](ctx, mock, "count"); ok {
		t.Error("Get[string]() should miss on a value of a different type")
	}

	if _, ok := Get[int](ctx, mock, "missing"); ok {
		t.Error("Get[int]() should miss on an absent key")
	}
}

func TestNewCacheService(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "bounded default", config: DefaultConfig()},
		{name: "unbounded", config: UnboundedConfig()},
		{name: "negative capacity", config: Config{Capacity: -5}, wantErr: true},
		{
			name:    "bounded without ttl",
			config:  Config{Capacity: 100, NumShards: 4, EvictionPercentage: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewCacheService(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("NewCacheService() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCacheService() failed: %v", err)
			}

			if err := service.Set(ctx, "products::a", 1); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			if _, ok := service.Get(ctx, "products::a"); !ok {
				t.Error("Get() should hit after Set()")
			}
			if err := service.DeleteByPrefix(ctx, "products::"); err != nil {
				t.Fatalf("DeleteByPrefix() failed: %v", err)
			}
			if _, ok := service.Get(ctx, "products::a"); ok {
				t.Error("Get() should miss after DeleteByPrefix()")
			}
		})
	}
}

func TestConfigBounded(t *testing.T) {
	if !DefaultConfig().Bounded() {
		t.Error("DefaultConfig() should be bounded")
	}
	if UnboundedConfig().Bounded() {
		t.Error("UnboundedConfig() should not be bounded")
	}
	if (Config{Capacity: 10, TTL: time.Minute}).Bounded() != true {
		t.Error("positive capacity should be bounded")
	}
}
