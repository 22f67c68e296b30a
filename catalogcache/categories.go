package catalogcache

import (
	"context"
	"errors"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-catalog-cache/catalog"
)

const categoriesFlightKey = "categories"

// Categories returns the category identifiers. The first successful call fetches and
// validates them; later calls are served from memory with no expiry until
// InvalidateCategories is called. Concurrent first calls share one fetch, which is not
// cancelled when the caller that started it goes away.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	const op = "Service.Categories"

	if s.categories == nil {
		return nil, fmt.Errorf("%s: no category source configured", op)
	}

	if ids, ok := s.cachedCategories(); ok {
		return slices.Clone(ids), nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	result, err, _ := s.categoryFlight.Do(categoriesFlightKey, func() (any, error) {
		if ids, ok := s.cachedCategories(); ok {
			return ids, nil
		}

		s.categoryMu.RLock()
		epoch := s.categoryEpoch
		s.categoryMu.RUnlock()

		records, err := s.categories.ListCategories(fetchCtx)
		if err != nil {
			return nil, err
		}

		ids, err := categoryIDs(records)
		if err != nil {
			return nil, err
		}

		s.categoryMu.Lock()
		// An invalidation while the fetch was in flight wins over its result.
		if epoch == s.categoryEpoch {
			s.categorySlot = ids
			s.categoryLoaded = true
		}
		s.categoryMu.Unlock()

		s.logger.Debug().Int("count", len(ids)).Msg("categories fetched")
		return ids, nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("category retrieval failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slices.Clone(result.([]string)), nil
}

// InvalidateCategories empties the category slot; the next Categories call fetches again.
func (s *Service) InvalidateCategories() {
	s.categoryMu.Lock()
	defer s.categoryMu.Unlock()

	s.categorySlot = nil
	s.categoryLoaded = false
	s.categoryEpoch++
}

func (s *Service) cachedCategories() ([]string, bool) {
	s.categoryMu.RLock()
	defer s.categoryMu.RUnlock()
	return s.categorySlot, s.categoryLoaded
}

// categoryIDs checks the payload is a non-empty collection of identified records.
func categoryIDs(records []catalog.Category) ([]string, error) {
	const op = "categories"

	if err := validation.Validate(records, validation.Required); err != nil {
		reason := "expected a non-empty collection of category records"
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			reason = "category records without an id"
		}
		return nil, &catalog.DataFormatError{Op: op, Reason: reason, Err: err}
	}

	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	return ids, nil
}
