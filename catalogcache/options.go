package catalogcache

import (
	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/rs/zerolog"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for request and cache events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.With().Str("component", "catalogcache").Logger()
	}
}

// WithKeySerializer replaces the canonical key serializer.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(s *Service) {
		if keys != nil {
			s.keys = keys
		}
	}
}

// WithSearchCandidateLimit bounds how many products a search fetches from the source.
func WithSearchCandidateLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.searchCandidateLimit = min(limit, catalog.MaxLimit)
		}
	}
}

// WithCandidateReuse controls whether page changes within one search+sort combination
// slice the cached candidate set (true, the default) or re-fetch and re-sort it.
func WithCandidateReuse(reuse bool) Option {
	return func(s *Service) {
		s.reuseCandidates = reuse
	}
}
