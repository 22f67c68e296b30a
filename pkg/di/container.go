package di

import (
	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/catalogcache"
	"github.com/rs/zerolog"
)

// Container provides dependency injection for the catalog query layer.
// It owns the singleton cache service and key serializer, and builds catalog
// services that share them.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	config        cache.Config
	logger        zerolog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger handed to every service the container builds.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// NewContainer creates a container whose cache backend is selected by config:
// sturdyc when Capacity is positive, the unbounded memory map otherwise.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	cacheService, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}

	c := &Container{
		cacheService:  cacheService,
		keySerializer: cache.NewCanonicalKeySerializer(),
		config:        config,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug().
		Bool("bounded", config.Bounded()).
		Int("capacity", config.Capacity).
		Dur("ttl", config.TTL).
		Msg("cache service initialized")

	return c, nil
}

// NewContainerWithDefaults creates a container using cache.DefaultConfig.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// CacheService returns the singleton cache service instance.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewCatalogService builds a catalog query service over the container's cache.
// Options are applied after the container's own, so they can override the logger.
func (c *Container) NewCatalogService(products catalog.ProductSource, categories catalog.CategorySource, opts ...catalogcache.Option) *catalogcache.Service {
	base := []catalogcache.Option{
		catalogcache.WithLogger(c.logger),
		catalogcache.WithKeySerializer(c.keySerializer),
	}
	return catalogcache.New(products, categories, c.cacheService, append(base, opts...)...)
}
