// Package httpsource implements the catalog data source ports against the remote
// catalog REST API.
package httpsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://next-ecommerce-api.vercel.app"
	DefaultTimeout = 10 * time.Second

	maxBodySize = 32 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig points at the public catalog API.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Client reads products and categories over HTTP. It implements both
// catalog.ProductSource and catalog.CategorySource.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout takes precedence
// over Config.Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "httpsource").Logger()
	}
}

// New creates a Client for the API at cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("httpsource config: %w", err)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("httpsource config: base url: %w", err)
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProducts implements catalog.ProductSource.
func (c *Client) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	const op = "list products"

	var products []catalog.Product
	err := c.getJSON(ctx, op, productQuery(filter), '[', &products, nil, "products")
	if err != nil {
		return nil, err
	}
	return products, nil
}

// productQuery shapes the list request. A search asks for the whole candidate set in one
// response, so the window is only sent when browsing.
func productQuery(filter catalog.ProductFilter) url.Values {
	query := url.Values{}

	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Search == "" || filter.Skip > 0 {
		query.Set("skip", strconv.Itoa(max(filter.Skip, 0)))
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.SortField != catalog.SortNone {
		query.Set("sortBy", string(filter.SortField))
		if filter.SortDirection != catalog.DirectionNone {
			query.Set("order", string(filter.SortDirection))
		}
	}
	return query
}

// GetProduct implements catalog.ProductSource.
func (c *Client) GetProduct(ctx context.Context, id catalog.ProductID) (catalog.Product, error) {
	const op = "get product"

	notFound := func() error { return &catalog.NotFoundError{ID: id} }

	var product catalog.Product
	if err := c.getJSON(ctx, op, nil, '{', &product, notFound, "products", string(id)); err != nil {
		return catalog.Product{}, err
	}
	if product.ID == "" {
		return catalog.Product{}, &catalog.DataFormatError{Op: op, Reason: "product record without an id"}
	}
	return product, nil
}

// ListCategories implements catalog.CategorySource.
func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	const op = "list categories"

	var categories []catalog.Category
	if err := c.getJSON(ctx, op, nil, '[', &categories, nil, "categories"); err != nil {
		return nil, err
	}
	return categories, nil
}

// getJSON issues a GET for path and decodes the body into dest. The body must be a JSON
// value starting with shape ('[' or '{'). notFound, when set, turns a 404 into its error.
func (c *Client) getJSON(ctx context.Context, op string, query url.Values, shape byte, dest any, notFound func() error, path ...string) error {
	endpoint := c.baseURL.JoinPath(path...)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	target := endpoint.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &catalog.NetworkError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Str("url", target).Msg("request failed")
		return &catalog.NetworkError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("response received")

	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return notFound()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &catalog.NetworkError{Op: op, URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &catalog.NetworkError{Op: op, URL: target, Err: err}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != shape {
		return &catalog.DataFormatError{Op: op, Reason: fmt.Sprintf("expected a JSON %s", shapeName(shape))}
	}
	if err := json.Unmarshal(trimmed, dest); err != nil {
		return &catalog.DataFormatError{Op: op, Reason: "undecodable response body", Err: err}
	}
	return nil
}

func shapeName(shape byte) string {
	if shape == '[' {
		return "array"
	}
	return "object"
}
