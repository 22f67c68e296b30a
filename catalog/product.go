package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// ProductID is an opaque, comparable product identifier.
// The remote API sends numeric ids; they are kept in their textual form.
type ProductID string

// UnmarshalJSON accepts both JSON strings and JSON numbers.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// Product is a catalog item. The query layer never mutates a Product, it only
// filters and reorders references to them.
type Product struct {
	ID          ProductID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	Reviews     []Review        `json:"reviews,omitempty"`
}

// Review is a single customer review attached to a product.
type Review struct {
	ReviewerName string    `json:"reviewerName"`
	Rating       float64   `json:"rating"`
	Comment      string    `json:"comment"`
	Date         time.Time `json:"date"`
}

// Category is a category record as served by the category data source.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts a bare string ("dairy") or an object with an id, slug or name.
func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Category{ID: s, Name: s}
		return nil
	}

	var raw struct {
		ID   *ProductID `json:"id"`
		Slug string     `json:"slug"`
		Name string     `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Name = raw.Name
	switch {
	case raw.ID != nil && *raw.ID != "":
		c.ID = string(*raw.ID)
	case raw.Slug != "":
		c.ID = raw.Slug
	default:
		c.ID = raw.Name
	}
	return nil
}

// Validate checks that the record carries an identifier.
func (c Category) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
	)
}
