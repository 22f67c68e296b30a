package catalogcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultSearchCandidateLimit is the upper bound requested from the source in search mode.
const DefaultSearchCandidateLimit = catalog.MaxLimit

// Service is the catalog query service. It owns the result cache and the category slot,
// and decides for every request whether the remote source paginates (browse mode) or
// the full candidate set is sorted and sliced locally (search mode).
type Service struct {
	products   catalog.ProductSource
	categories catalog.CategorySource
	cache      cache.CacheService
	keys       cache.KeySerializer
	logger     zerolog.Logger

	searchCandidateLimit int
	reuseCandidates      bool

	categoryMu     sync.RWMutex
	categorySlot   []string
	categoryLoaded bool
	categoryEpoch  uint64
	categoryFlight singleflight.Group
}

// New creates a Service reading products and categories through cacheService.
func New(products catalog.ProductSource, categories catalog.CategorySource, cacheService cache.CacheService, opts ...Option) *Service {
	s := &Service{
		products:             products,
		categories:           categories,
		cache:                cacheService,
		keys:                 cache.NewCanonicalKeySerializer(),
		logger:               zerolog.Nop(),
		searchCandidateLimit: DefaultSearchCandidateLimit,
		reuseCandidates:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Products returns the page of products selected by params, from the cache when an
// equivalent request was served before. Failed retrievals leave the cache untouched.
func (s *Service) Products(ctx context.Context, params catalog.QueryParams) (catalog.Page, error) {
	const op = "Service.Products"

	p := params.Normalize()
	if err := p.Validate(); err != nil {
		return catalog.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	key := catalog.CanonicalizeWith(s.keys, p)
	log := s.logger.With().
		Str("request_id", uuid.NewString()).
		Str("key", string(key)).
		Str("mode", p.Mode().String()).
		Logger()

	var fetched atomic.Bool
	page, err := cache.GetOrFetch(ctx, s.cache, string(key), func(ctx context.Context) (catalog.Page, error) {
		fetched.Store(true)
		switch p.Mode() {
		case catalog.ModeSearch:
			return s.searchPage(ctx, p)
		default:
			return s.browsePage(ctx, p)
		}
	})
	if err != nil {
		log.Warn().Err(err).Msg("product retrieval failed")
		return catalog.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug().
		Bool("cache_hit", !fetched.Load()).
		Int("count", len(page.Products)).
		Msg("product page served")

	return page.Clone(), nil
}

// browsePage trusts the remote source's own filtering, ordering and window.
func (s *Service) browsePage(ctx context.Context, p catalog.QueryParams) (catalog.Page, error) {
	products, err := s.products.ListProducts(ctx, catalog.ProductFilter{
		Category:      p.Category,
		SortField:     p.SortField,
		SortDirection: p.SortDirection,
		Skip:          p.Offset(),
		Limit:         p.Limit,
	})
	if err != nil {
		return catalog.Page{}, err
	}
	return catalog.NewBrowsePage(p, products), nil
}

func (s *Service) searchPage(ctx context.Context, p catalog.QueryParams) (catalog.Page, error) {
	candidates, err := s.searchCandidates(ctx, p)
	if err != nil {
		return catalog.Page{}, err
	}
	return catalog.NewSearchPage(p, candidates), nil
}

// searchCandidates returns the sorted candidate set for p's search+sort combination.
// The set is always stored; it is only read back when candidate reuse is enabled.
func (s *Service) searchCandidates(ctx context.Context, p catalog.QueryParams) ([]catalog.Product, error) {
	key := string(catalog.CandidateKeyWith(s.keys, p))

	if s.reuseCandidates {
		return cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]catalog.Product, error) {
			return s.fetchCandidates(ctx, p)
		})
	}

	candidates, err := s.fetchCandidates(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, candidates); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store search candidates")
	}
	return candidates, nil
}

func (s *Service) fetchCandidates(ctx context.Context, p catalog.QueryParams) ([]catalog.Product, error) {
	matches, err := s.products.ListProducts(ctx, catalog.ProductFilter{
		Category: p.Category,
		Search:   p.SearchTerm,
		Limit:    s.searchCandidateLimit,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("search", p.SearchTerm).
		Int("candidates", len(matches)).
		Msg("search candidates fetched")

	return catalog.SortProducts(matches, p.SortField, p.SortDirection), nil
}

// CachedPage probes the cache for params without touching the source.
func (s *Service) CachedPage(ctx context.Context, params catalog.QueryParams) (catalog.Page, bool) {
	key := catalog.CanonicalizeWith(s.keys, params)
	page, ok := cache.Get[catalog.Page](ctx, s.cache, string(key))
	if !ok {
		return catalog.Page{}, false
	}
	return page.Clone(), true
}

// CachedCandidates probes the cache for the search candidate set of params.
func (s *Service) CachedCandidates(ctx context.Context, params catalog.QueryParams) ([]catalog.Product, bool) {
	key := catalog.CandidateKeyWith(s.keys, params)
	return cache.Get[[]catalog.Product](ctx, s.cache, string(key))
}

// Product returns a single product by id. Lookups that end in a NotFoundError are not cached.
func (s *Service) Product(ctx context.Context, id catalog.ProductID) (catalog.Product, error) {
	const op = "Service.Product"

	if id == "" {
		return catalog.Product{}, fmt.Errorf("%s: %w: empty product id", op, catalog.ErrInvalidParams)
	}

	key := catalog.ProductKey(id)
	product, err := cache.GetOrFetch(ctx, s.cache, string(key), func(ctx context.Context) (catalog.Product, error) {
		return s.products.GetProduct(ctx, id)
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.logger.Debug().Str("product_id", string(id)).Msg("product not found")
		} else {
			s.logger.Warn().Err(err).Str("product_id", string(id)).Msg("product lookup failed")
		}
		return catalog.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

// InvalidateProducts drops every cached page, candidate set and product lookup.
func (s *Service) InvalidateProducts(ctx context.Context) error {
	var errs []error
	for _, namespace := range []string{catalog.PageNamespace, catalog.CandidateNamespace, catalog.ProductNamespace} {
		if err := s.cache.DeleteByPrefix(ctx, namespace+cache.KeySeparator); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", namespace, err))
		}
	}
	s.logger.Info().Msg("product cache invalidated")
	return errors.Join(errs...)
}
