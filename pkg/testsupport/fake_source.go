package testsupport

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-catalog-cache/catalog"
)

// FakeSource is an in-memory catalog.ProductSource and catalog.CategorySource.
//
// It behaves like the remote catalog: category equality filter, case-insensitive
// search over title and description, sorting and a skip/limit window. Every call is
// recorded, and errors can be queued with FailNext.
type FakeSource struct {
	// BeforeList runs at the start of every ListProducts call, outside the lock.
	BeforeList func(ctx context.Context, filter catalog.ProductFilter)
	// BeforeCategories runs at the start of every ListCategories call, outside the lock.
	BeforeCategories func(ctx context.Context)

	mu            sync.Mutex
	products      []catalog.Product
	categories    []catalog.Category
	failures      []error
	listFilters   []catalog.ProductFilter
	getCalls      int
	categoryCalls int
}

// NewFakeSource creates a FakeSource serving products and categories.
func NewFakeSource(products []catalog.Product, categories []catalog.Category) *FakeSource {
	return &FakeSource{
		products:   slices.Clone(products),
		categories: slices.Clone(categories),
	}
}

// SetProducts replaces the served products.
func (f *FakeSource) SetProducts(products []catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = slices.Clone(products)
}

// SetCategories replaces the served categories.
func (f *FakeSource) SetCategories(categories []catalog.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = slices.Clone(categories)
}

// FailNext queues err to be returned by the next call of any method.
func (f *FakeSource) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, err)
}

func (f *FakeSource) nextFailure() error {
	if len(f.failures) == 0 {
		return nil
	}
	err := f.failures[0]
	f.failures = f.failures[1:]
	return err
}

// ListProducts implements catalog.ProductSource.
func (f *FakeSource) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	if f.BeforeList != nil {
		f.BeforeList(ctx, filter)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.listFilters = append(f.listFilters, filter)
	if err := f.nextFailure(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := make([]catalog.Product, 0, len(f.products))
	for _, p := range f.products {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		matches = append(matches, p)
	}

	if filter.SortField != catalog.SortNone {
		matches = catalog.SortProducts(matches, filter.SortField, filter.SortDirection)
	}

	start := min(max(filter.Skip, 0), len(matches))
	end := len(matches)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matches))
	}
	return slices.Clone(matches[start:end]), nil
}

func matchesSearch(p catalog.Product, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

// GetProduct implements catalog.ProductSource.
func (f *FakeSource) GetProduct(ctx context.Context, id catalog.ProductID) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls++
	if err := f.nextFailure(); err != nil {
		return catalog.Product{}, err
	}

	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, &catalog.NotFoundError{ID: id}
}

// ListCategories implements catalog.CategorySource.
func (f *FakeSource) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	if f.BeforeCategories != nil {
		f.BeforeCategories(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.categoryCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.nextFailure(); err != nil {
		return nil, err
	}
	return slices.Clone(f.categories), nil
}

// ListCalls reports how many ListProducts calls were made.
func (f *FakeSource) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listFilters)
}

// ListFilters returns the filters of every ListProducts call, oldest first.
func (f *FakeSource) ListFilters() []catalog.ProductFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.listFilters)
}

// GetCalls reports how many GetProduct calls were made.
func (f *FakeSource) GetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

// CategoryCalls reports how many ListCategories calls were made.
func (f *FakeSource) CategoryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categoryCalls
}
