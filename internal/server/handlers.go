package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/rs/zerolog"
)

// Catalog is the query surface served over HTTP.
type Catalog interface {
	Products(ctx context.Context, params catalog.QueryParams) (catalog.Page, error)
	Product(ctx context.Context, id catalog.ProductID) (catalog.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type productsResponse struct {
	Products []catalog.Product `json:"products"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Mode     catalog.Mode      `json:"mode"`
	Total    int               `json:"total,omitempty"`
	HasNext  bool              `json:"hasNext"`
	Query    string            `json:"query"`
	Next     string            `json:"next,omitempty"`
	Prev     string            `json:"prev,omitempty"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	catalog Catalog
}

// register wires the catalog routes onto mux.
func register(mux *http.ServeMux, c Catalog) {
	h := handlers{catalog: c}
	mux.HandleFunc("GET /v1/products", h.listProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.getProduct)
	mux.HandleFunc("GET /v1/categories", h.listCategories)
	mux.HandleFunc("GET /healthz", healthz)
}

func (h handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	params, err := catalog.Decode(r.URL.RawQuery)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.catalog.Products(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := productsResponse{
		Products: page.Products,
		Page:     page.Page,
		Limit:    page.Limit,
		Mode:     page.Mode,
		Total:    page.Total,
		HasNext:  page.HasNext,
		Query:    catalog.Encode(params),
	}
	if resp.Products == nil {
		resp.Products = []catalog.Product{}
	}
	if page.HasNext {
		resp.Next = catalog.Encode(params.WithPage(page.Page + 1))
	}
	if page.Page > 1 {
		resp.Prev = catalog.Encode(params.WithPage(page.Page - 1))
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (h handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Product(r.Context(), catalog.ProductID(r.PathValue("id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, product)
}

func (h handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, categoriesResponse{Categories: categories})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// statusFor maps catalog errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrInvalidParams), errors.Is(err, catalog.ErrMalformedQuery):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrNetwork), errors.Is(err, catalog.ErrDataFormat):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	log := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write response body")
	}
}
