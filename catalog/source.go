package catalog

import "context"

// ProductFilter is the request forwarded to a ProductSource.
type ProductFilter struct {
	Category      string
	Search        string
	SortField     SortField
	SortDirection SortDirection
	Skip          int
	Limit         int
}

// ProductSource is the remote product data source.
//
// It must support skip/limit pagination and category equality filtering. It does not
// need to combine search, sort and pagination: search mode sorts and slices locally.
type ProductSource interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	// GetProduct returns a *NotFoundError when no product has the given id.
	GetProduct(ctx context.Context, id ProductID) (Product, error)
}

// CategorySource is the remote category data source.
type CategorySource interface {
	ListCategories(ctx context.Context) ([]Category, error)
}
