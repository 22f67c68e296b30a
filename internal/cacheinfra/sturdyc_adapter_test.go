package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}

	if cfg.TTL != 24*time.Hour {
		t.Errorf("expected TTL to be 24 hours, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}

	if cfg.EarlyRefresh != nil {
		t.Error("expected EarlyRefresh to be disabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid default config",
			cfg:       DefaultConfig(),
			wantError: false,
		},
		{
			name:      "zero capacity selects unbounded",
			cfg:       Config{},
			wantError: false,
		},
		{
			name:      "negative capacity",
			cfg:       Config{Capacity: -1},
			wantError: true,
			errorMsg:  "config error in field Capacity: must not be negative",
		},
		{
			name: "invalid num shards - zero",
			cfg: Config{
				Capacity:           1000,
				NumShards:          0,
				TTL:                5 * time.Minute,
				EvictionPercentage: 10,
			},
			wantError: true,
			errorMsg:  "config error in field NumShards: must be greater than 0",
		},
		{
			name: "num shards above capacity",
			cfg: Config{
				Capacity:           10,
				NumShards:          20,
				TTL:                5 * time.Minute,
				EvictionPercentage: 10,
			},
			wantError: true,
			errorMsg:  "config error in field NumShards: must not exceed Capacity",
		},
		{
			name: "invalid TTL - zero",
			cfg: Config{
				Capacity:           1000,
				NumShards:          16,
				TTL:                0,
				EvictionPercentage: 10,
			},
			wantError: true,
			errorMsg:  "config error in field TTL: must be greater than 0",
		},
		{
			name: "invalid eviction percentage - too low",
			cfg: Config{
				Capacity:           1000,
				NumShards:          16,
				TTL:                5 * time.Minute,
				EvictionPercentage: 0,
			},
			wantError: true,
			errorMsg:  "config error in field EvictionPercentage: must be between 1 and 100",
		},
		{
			name: "invalid eviction percentage - too high",
			cfg: Config{
				Capacity:           1000,
				NumShards:          16,
				TTL:                5 * time.Minute,
				EvictionPercentage: 101,
			},
			wantError: true,
			errorMsg:  "config error in field EvictionPercentage: must be between 1 and 100",
		},
		{
			name: "early refresh max below min",
			cfg: Config{
				Capacity:           1000,
				NumShards:          16,
				TTL:                5 * time.Minute,
				EvictionPercentage: 10,
				EarlyRefresh: &EarlyRefreshConfig{
					MinAsyncRefreshTime: 20 * time.Second,
					MaxAsyncRefreshTime: 10 * time.Second,
				},
			},
			wantError: true,
			errorMsg:  "config error in field EarlyRefresh.MaxAsyncRefreshTime: must not be lower than MinAsyncRefreshTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("expected error message %q, got %q", tt.errorMsg, err.Error())
				}
				var configErr *ConfigError
				if !errors.As(err, &configErr) {
					t.Errorf("expected ConfigError but got: %T", err)
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	if options := DefaultConfig().ToSturdycOptions(); len(options) != 0 {
		t.Errorf("expected no sturdyc options for default config, got %d", len(options))
	}

	fullCfg := Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                time.Minute,
		EvictionPercentage: 5,
		EarlyRefresh: &EarlyRefreshConfig{
			MinAsyncRefreshTime: 10 * time.Second,
			MaxAsyncRefreshTime: 20 * time.Second,
			SyncRefreshTime:     30 * time.Second,
			RetryBaseDelay:      100 * time.Millisecond,
		},
		EvictionInterval: time.Second,
	}

	if options := fullCfg.ToSturdycOptions(); len(options) != 2 {
		t.Errorf("expected 2 sturdyc options for full config, got %d", len(options))
	}

	intervalCfg := Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                time.Minute,
		EvictionPercentage: 5,
		EvictionInterval:   time.Second,
	}

	if options := intervalCfg.ToSturdycOptions(); len(options) != 1 {
		t.Errorf("expected 1 sturdyc option for eviction interval config, got %d", len(options))
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{
		Field:   "TestField",
		Message: "test message",
	}

	expected := "config error in field TestField: test message"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestNewSturdycService(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid default config",
			cfg:       DefaultConfig(),
			wantError: false,
		},
		{
			name:      "zero capacity is rejected",
			cfg:       Config{},
			wantError: true,
			errorMsg:  "config error in field Capacity: must be greater than 0 for the bounded backend",
		},
		{
			name: "invalid config - zero TTL",
			cfg: Config{
				Capacity:           1000,
				NumShards:          16,
				TTL:                0,
				EvictionPercentage: 10,
			},
			wantError: true,
			errorMsg:  "config error in field TTL: must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewSturdycService(tt.cfg)

			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("expected error message %q, got %q", tt.errorMsg, err.Error())
				}
				if service != nil {
					t.Error("expected service to be nil when error occurs")
				}
			} else {
				if err != nil {
					t.Errorf("expected no error but got: %v", err)
					return
				}
				if service == nil {
					t.Error("expected service to be non-nil")
				}
			}
		})
	}
}

func newTestSturdycService(t *testing.T) *sturdycService {
	t.Helper()
	service, err := NewSturdycService(Config{
		Capacity:           100,
		NumShards:          2,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	service := newTestSturdycService(t)
	ctx := context.Background()

	t.Run("cache miss then hit", func(t *testing.T) {
		calls := 0
		fetchFn := func(ctx context.Context) (any, error) {
			calls++
			return "test-value", nil
		}

		for range 2 {
			result, err := service.GetOrFetch(ctx, "test-key", fetchFn)
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			if result != "test-value" {
				t.Errorf("expected result %v, got %v", "test-value", result)
			}
		}

		if calls != 1 {
			t.Errorf("expected fetch function to be called once, got %d", calls)
		}
	})

	t.Run("fetch error is not cached", func(t *testing.T) {
		expectedError := errors.New("fetch failed")

		_, err := service.GetOrFetch(ctx, "error-key", func(ctx context.Context) (any, error) {
			return nil, expectedError
		})
		if !errors.Is(err, expectedError) {
			t.Errorf("expected %v but got: %v", expectedError, err)
		}

		result, err := service.GetOrFetch(ctx, "error-key", func(ctx context.Context) (any, error) {
			return "recovered", nil
		})
		if err != nil {
			t.Fatalf("expected recovery but got: %v", err)
		}
		if result != "recovered" {
			t.Errorf("expected recovered value, got %v", result)
		}
	})

	t.Run("error with nil result keeps the fetch error", func(t *testing.T) {
		_, err := service.GetOrFetch(ctx, "nil-error-key", func(ctx context.Context) (any, error) {
			return nil, context.DeadlineExceeded
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected %v but got: %v", context.DeadlineExceeded, err)
		}
		if _, ok := service.Get(ctx, "nil-error-key"); ok {
			t.Error("expected failed fetch not to be stored")
		}
	})

	t.Run("nil result is cached", func(t *testing.T) {
		calls := 0
		fetchFn := func(ctx context.Context) (any, error) {
			calls++
			return nil, nil
		}

		for range 2 {
			result, err := service.GetOrFetch(ctx, "nil-value-key", fetchFn)
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %v", result)
			}
		}
		if calls != 1 {
			t.Errorf("expected fetch function to be called once, got %d", calls)
		}

		value, ok := service.Get(ctx, "nil-value-key")
		if !ok || value != nil {
			t.Errorf("expected stored nil value, got %v (found %v)", value, ok)
		}
	})

	t.Run("cancelled caller does not fail the shared fetch", func(t *testing.T) {
		release := make(chan struct{})
		fetchFn := func(ctx context.Context) (any, error) {
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return "shared", nil
		}

		callerCtx, cancel := context.WithCancel(ctx)
		first := make(chan error, 1)
		go func() {
			_, err := service.GetOrFetch(callerCtx, "shared-key", fetchFn)
			first <- err
		}()

		second := make(chan any, 1)
		go func() {
			time.Sleep(20 * time.Millisecond)
			v, _ := service.GetOrFetch(ctx, "shared-key", fetchFn)
			second <- v
		}()

		time.Sleep(40 * time.Millisecond)
		cancel()
		close(release)

		if err := <-first; err != nil {
			t.Errorf("expected first caller to get the fetched value, got: %v", err)
		}
		if v := <-second; v != "shared" {
			t.Errorf("expected waiting caller to get %q, got %v", "shared", v)
		}
		if v, ok := service.Get(ctx, "shared-key"); !ok || v != "shared" {
			t.Errorf("expected fetched value to be stored, got %v (found %v)", v, ok)
		}
	})

	t.Run("nil fetch function", func(t *testing.T) {
		result, err := service.GetOrFetch(ctx, "nil-key", nil)
		if result != nil {
			t.Errorf("expected nil result but got: %v", result)
		}

		var configErr *ConfigError
		if !errors.As(err, &configErr) {
			t.Fatalf("expected ConfigError but got: %T", err)
		}
		if configErr.Field != "fetchFn" || configErr.Message != "cannot be nil" {
			t.Errorf("unexpected config error: %v", configErr)
		}
	})
}

func TestSturdycService_GetSet(t *testing.T) {
	service := newTestSturdycService(t)
	ctx := context.Background()

	if _, ok := service.Get(ctx, "absent"); ok {
		t.Error("expected miss for absent key")
	}

	if err := service.Set(ctx, "present", 42); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	value, ok := service.Get(ctx, "present")
	if !ok || value != 42 {
		t.Errorf("Get() = %v, %v, want 42, true", value, ok)
	}

	if service.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", service.Len())
	}
}

func TestSturdycService_Delete(t *testing.T) {
	service := newTestSturdycService(t)
	ctx := context.Background()

	key := "delete-test-key"
	if _, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return "test-value", nil
	}); err != nil {
		t.Fatalf("failed to cache value: %v", err)
	}

	if err := service.Delete(ctx, key); err != nil {
		t.Errorf("expected no error from Delete but got: %v", err)
	}

	fetchCalled := false
	if _, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		fetchCalled = true
		return "new-value", nil
	}); err != nil {
		t.Fatalf("failed to fetch after delete: %v", err)
	}

	if !fetchCalled {
		t.Error("expected fetch function to be called after delete, indicating cache miss")
	}

	if err := service.Delete(ctx, ""); err != nil {
		t.Errorf("expected no error from Delete with empty key but got: %v", err)
	}
}

func TestSturdycService_DeleteByPrefix(t *testing.T) {
	testDeleteByPrefix(t, newTestSturdycService(t))
}

type prefixDeleter interface {
	Set(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) (any, bool)
	DeleteByPrefix(ctx context.Context, prefix string) error
	Len() int
}

func testDeleteByPrefix(t *testing.T, service prefixDeleter) {
	t.Helper()
	ctx := context.Background()

	testKeys := map[string]string{
		"products::{page=1}":            "page-1",
		"products::{page=2}":            "page-2",
		"search_candidates::{search=x}": "candidates",
		"product::7":                    "product",
	}
	for key, value := range testKeys {
		if err := service.Set(ctx, key, value); err != nil {
			t.Fatalf("failed to set %s: %v", key, err)
		}
	}

	if err := service.DeleteByPrefix(ctx, "products::"); err != nil {
		t.Errorf("expected no error from DeleteByPrefix but got: %v", err)
	}

	expectations := map[string]bool{
		"products::{page=1}":            false,
		"products::{page=2}":            false,
		"search_candidates::{search=x}": true,
		"product::7":                    true,
	}
	for key, shouldBeCached := range expectations {
		if _, ok := service.Get(ctx, key); ok != shouldBeCached {
			t.Errorf("key %s cached = %v, want %v", key, ok, shouldBeCached)
		}
	}

	if service.Len() != 2 {
		t.Errorf("expected 2 remaining entries, got %d", service.Len())
	}

	if err := service.DeleteByPrefix(ctx, "nonexistent::"); err != nil {
		t.Errorf("expected no error from DeleteByPrefix with no matches but got: %v", err)
	}
}
