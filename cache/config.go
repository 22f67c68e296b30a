package cache

import (
	"time"

	"github.com/goliatone/go-catalog-cache/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
//
// A zero Capacity selects the unbounded in-memory backend: entries live for the
// life of the process and TTL/eviction settings are ignored. A positive Capacity
// selects the bounded sturdyc backend.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	// EarlyRefresh, when set, lets the bounded backend refresh hot entries in the
	// background before their TTL runs out.
	EarlyRefresh     *EarlyRefreshConfig
	EvictionInterval time.Duration
}

// EarlyRefreshConfig mirrors the underlying sturdyc early refresh options.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns the bounded configuration used by long running processes.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// UnboundedConfig returns a configuration selecting the unbounded in-memory backend.
func UnboundedConfig() Config {
	return Config{}
}

// Bounded reports whether the configuration selects a size-limited backend.
func (c Config) Bounded() bool {
	return c.Capacity > 0
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the cache backend selected by the provided configuration.
func NewCacheService(cfg Config) (CacheService, error) {
	if !cfg.Bounded() {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cacheinfra.NewMemoryService(), nil
	}
	return cacheinfra.NewSturdycService(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	var early *cacheinfra.EarlyRefreshConfig
	if c.EarlyRefresh != nil {
		early = &cacheinfra.EarlyRefreshConfig{
			MinAsyncRefreshTime: c.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: c.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     c.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      c.EarlyRefresh.RetryBaseDelay,
		}
	}

	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EarlyRefresh:       early,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	var early *EarlyRefreshConfig
	if cfg.EarlyRefresh != nil {
		early = &EarlyRefreshConfig{
			MinAsyncRefreshTime: cfg.EarlyRefresh.MinAsyncRefreshTime,
			MaxAsyncRefreshTime: cfg.EarlyRefresh.MaxAsyncRefreshTime,
			SyncRefreshTime:     cfg.EarlyRefresh.SyncRefreshTime,
			RetryBaseDelay:      cfg.EarlyRefresh.RetryBaseDelay,
		}
	}

	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EarlyRefresh:       early,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
