package testsupport

import (
	"fmt"
	"time"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/shopspring/decimal"
)

// FixtureCategories are the categories GenerateProducts assigns, in rotation.
var FixtureCategories = []string{"smartphones", "laptops", "fragrances"}

// GenerateProducts returns n deterministic products. Prices and ratings repeat so that
// sorts exercise ties; titles of every third product contain "phone".
func GenerateProducts(n int) []catalog.Product {
	products := make([]catalog.Product, n)
	for i := range n {
		title := fmt.Sprintf("Product %d", i+1)
		if i%3 == 0 {
			title = fmt.Sprintf("Phone %d", i+1)
		}
		products[i] = catalog.Product{
			ID:          catalog.ProductID(fmt.Sprintf("%d", i+1)),
			Title:       title,
			Description: fmt.Sprintf("Description of item %d", i+1),
			Brand:       fmt.Sprintf("Brand %d", i%4),
			Category:    FixtureCategories[i%len(FixtureCategories)],
			Price:       decimal.NewFromInt(int64((i*37)%50 + 1)).Add(decimal.New(99, -2)),
			Rating:      float64((i*13)%50) / 10,
			Stock:       (i * 7) % 100,
			Reviews: []catalog.Review{{
				ReviewerName: "Reviewer",
				Rating:       float64(i%5 + 1),
				Comment:      "ok",
				Date:         time.Date(2024, time.May, 23, 8, 56, 21, 0, time.UTC),
			}},
		}
	}
	return products
}

// GenerateCategories returns category records for FixtureCategories.
func GenerateCategories() []catalog.Category {
	categories := make([]catalog.Category, len(FixtureCategories))
	for i, id := range FixtureCategories {
		categories[i] = catalog.Category{ID: id, Name: id}
	}
	return categories
}
