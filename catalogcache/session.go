package catalogcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by Session loads whose response arrived after a newer
// request was issued. The response is dropped from the session view; it stays cached.
var ErrSuperseded = errors.New("catalogcache: response superseded by a newer request")

// View is a snapshot of a Session.
type View struct {
	Params     catalog.QueryParams
	Page       catalog.Page
	Loading    bool
	Err        error
	Generation uint64
}

// Session tracks one client's current listing parameters and the page they produced.
// Only the response to the most recently issued request is applied to the view.
type Session struct {
	id      string
	service *Service
	logger  zerolog.Logger

	generation atomic.Uint64

	mu   sync.Mutex
	view View
}

// NewSession starts a session at initial. Nothing is loaded until Load or a navigation
// method is called.
func (s *Service) NewSession(initial catalog.QueryParams) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		service: s,
		logger:  s.logger.With().Str("session_id", id).Logger(),
		view:    View{Params: initial.Normalize()},
	}
}

// ID identifies the session in logs.
func (ss *Session) ID() string { return ss.id }

// Params returns the session's current parameters.
func (ss *Session) Params() catalog.QueryParams {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.view.Params
}

// View returns a snapshot of the session.
func (ss *Session) View() View {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	v := ss.view
	v.Page = v.Page.Clone()
	return v
}

// QueryString encodes the current parameters for a shareable URL.
func (ss *Session) QueryString() string {
	return catalog.Encode(ss.Params())
}

// Load makes params current and retrieves their page. When another Load starts before
// this one completes, this one returns ErrSuperseded and leaves the view alone.
func (ss *Session) Load(ctx context.Context, params catalog.QueryParams) (catalog.Page, error) {
	params = params.Normalize()
	gen := ss.generation.Add(1)

	ss.mu.Lock()
	if gen == ss.generation.Load() {
		ss.view.Params = params
		ss.view.Loading = true
		ss.view.Err = nil
		ss.view.Generation = gen
	}
	ss.mu.Unlock()

	page, err := ss.service.Products(ctx, params)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if gen != ss.generation.Load() {
		ss.logger.Debug().
			Uint64("generation", gen).
			Str("query", catalog.Encode(params)).
			Msg("stale response dropped")
		return catalog.Page{}, ErrSuperseded
	}

	ss.view.Loading = false
	ss.view.Err = err
	if err != nil {
		return catalog.Page{}, err
	}
	ss.view.Page = page
	return page.Clone(), nil
}

// SelectCategory filters by category and returns to the first page.
func (ss *Session) SelectCategory(ctx context.Context, category string) (catalog.Page, error) {
	p := ss.Params()
	p.Category = category
	p.Page = 1
	return ss.Load(ctx, p)
}

// Search sets the search term and returns to the first page.
func (ss *Session) Search(ctx context.Context, term string) (catalog.Page, error) {
	p := ss.Params()
	p.SearchTerm = term
	p.Page = 1
	return ss.Load(ctx, p)
}

// SortBy changes the ordering and returns to the first page.
func (ss *Session) SortBy(ctx context.Context, field catalog.SortField, direction catalog.SortDirection) (catalog.Page, error) {
	p := ss.Params()
	p.SortField = field
	p.SortDirection = direction
	p.Page = 1
	return ss.Load(ctx, p)
}

// GoToPage moves to page, keeping every other parameter.
func (ss *Session) GoToPage(ctx context.Context, page int) (catalog.Page, error) {
	return ss.Load(ctx, ss.Params().WithPage(page))
}

// Reset clears category, search and sort. Page and limit are kept.
func (ss *Session) Reset(ctx context.Context) (catalog.Page, error) {
	p := ss.Params()
	return ss.Load(ctx, catalog.QueryParams{Page: p.Page, Limit: p.Limit})
}
