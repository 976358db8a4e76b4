package store

import (
	"context"
	"errors"
	"sync"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
)

// maxRefetched bounds the ids awaiting their own echo; echoes that never
// arrive would otherwise accumulate.
const maxRefetched = 256

// RoutesBackend is the REST surface behind the routes page.
type RoutesBackend interface {
	Page(ctx context.Context, req models.PageRequest) (*models.Page[models.Route], error)
	Create(ctx context.Context, body models.Route) (models.Route, error)
	Update(ctx context.Context, id int64, body models.Route) (models.Route, error)
	Delete(ctx context.Context, id int64) error
	AddBetween(ctx context.Context, fromID, toID int64, body models.Route) (models.Route, error)
}

// PageSnapshot is a point-in-time copy of the routes page store.
type PageSnapshot struct {
	Page      *models.Page[models.Route] `json:"page"`
	Request   models.PageRequest         `json:"request"`
	Placement constants.PagePlacement    `json:"placement"`
	Status    models.FetchStatus         `json:"status"`
	Error     string                     `json:"error,omitempty"`
}

// RoutesPageStore holds one page window of routes plus the request that
// selected it. Changing the request does not fetch; FetchPage does.
type RoutesPageStore struct {
	backend   RoutesBackend
	placement constants.PagePlacement
	metrics   *metrics.MetricsRegistry

	mu      sync.Mutex
	request models.PageRequest
	page    *models.Page[models.Route]
	status  models.FetchStatus
	err     string
	seq     uint64
	// ids created locally under the refetch policy whose echo must not be counted again
	refetched map[int64]struct{}
}

func NewRoutesPageStore(backend RoutesBackend, placement constants.PagePlacement, pageSize int, m *metrics.MetricsRegistry) *RoutesPageStore {
	if placement != constants.PlacementRefetch {
		placement = constants.PlacementOptimistic
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultRoutesPageSize
	}
	return &RoutesPageStore{
		backend:   backend,
		placement: placement,
		metrics:   m,
		request:   models.PageRequest{Page: 0, Size: pageSize},
		status:    models.StatusIdle,
		refetched: map[int64]struct{}{},
	}
}

// SetPageRequest validates and stores the next request.
func (s *RoutesPageStore) SetPageRequest(req models.PageRequest) error {
	req, err := req.Normalize()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.request = req
	return nil
}

func (s *RoutesPageStore) Request() models.PageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.request
}

// FetchPage replaces the page window with the backend's page for the
// current request. Responses superseded by a newer fetch are discarded.
func (s *RoutesPageStore) FetchPage(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	req := s.request
	s.status = models.StatusLoading
	s.mu.Unlock()

	page, err := s.backend.Page(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.metrics.StaleResponse("routes")
		logging.Debug("discarding stale routes page", "page", req.Page, "seq", seq, "latest", s.seq)
		return nil
	}
	if err != nil {
		s.status = models.StatusFailed
		s.err = providers.UserMessage(err, constants.MsgFetchRoutesFailed)
		return err
	}
	s.page = page
	s.status = models.StatusSucceeded
	s.err = ""
	// an echo of a route already on the page replaces it in place
	for _, r := range page.Content {
		if id, ok := r.EntityID(); ok {
			delete(s.refetched, id)
		}
	}
	return nil
}

func (s *RoutesPageStore) Create(ctx context.Context, body models.Route) (models.Route, error) {
	created, err := s.backend.Create(ctx, body)
	if err != nil {
		return created, err
	}
	return created, s.confirm(ctx, models.ActionCreate, created)
}

// AddBetween creates a route pinned to two existing locations. The result
// is merged as a Create.
func (s *RoutesPageStore) AddBetween(ctx context.Context, fromID, toID int64, body models.Route) (models.Route, error) {
	created, err := s.backend.AddBetween(ctx, fromID, toID, body)
	if err != nil {
		return created, err
	}
	return created, s.confirm(ctx, models.ActionCreate, created)
}

func (s *RoutesPageStore) Update(ctx context.Context, id int64, body models.Route) (models.Route, error) {
	updated, err := s.backend.Update(ctx, id, body)
	if err != nil {
		return updated, err
	}
	return updated, s.confirm(ctx, models.ActionUpdate, updated)
}

func (s *RoutesPageStore) Delete(ctx context.Context, id int64) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return err
	}
	return s.confirm(ctx, models.ActionDelete, models.Route{ID: models.IDPtr(id)})
}

// confirm merges a mutation the backend accepted, according to the placement
// policy. A failed refetch leaves the store Failed but does not fail the
// mutation.
func (s *RoutesPageStore) confirm(ctx context.Context, action models.Action, route models.Route) error {
	event := models.ChangeEvent[models.Route]{Entity: models.EntityRoute, Action: action, Data: route, Origin: models.OriginLocal}
	if s.placement == constants.PlacementRefetch {
		if id, ok := route.EntityID(); ok && action == models.ActionCreate {
			s.mu.Lock()
			if len(s.refetched) >= maxRefetched {
				s.refetched = map[int64]struct{}{}
			}
			s.refetched[id] = struct{}{}
			s.mu.Unlock()
		}
		if err := s.FetchPage(ctx); err != nil {
			logging.Warn("routes page refetch after mutation failed", "action", action, "error", err)
		}
		return nil
	}
	if err := s.ApplyEvent(event); errors.Is(err, ErrNotLoaded) {
		logging.Debug("routes page not loaded, mutation not merged", "action", action)
	}
	return nil
}

// ApplyEvent merges an event into the loaded page. It returns ErrNotLoaded
// and drops the event when no page has been fetched yet.
func (s *RoutesPageStore) ApplyEvent(event models.ChangeEvent[models.Route]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		s.metrics.EventDropped("page_not_loaded")
		return ErrNotLoaded
	}

	if id, ok := event.Data.EntityID(); ok && event.Action == models.ActionCreate {
		if _, echoed := s.refetched[id]; echoed {
			delete(s.refetched, id)
			if indexOf(s.page.Content, id) < 0 {
				return nil
			}
		}
	}

	page, applied := ApplyToPage(s.page, event)
	s.page = page
	if applied {
		s.metrics.EventApplied(string(models.EntityRoute), string(event.Action), string(event.Origin))
	}
	return nil
}

// Reset drops the loaded page and goes back to the first page. The page
// size is kept.
func (s *RoutesPageStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.page = nil
	s.request = models.PageRequest{Page: 0, Size: s.request.Size}
	s.status = models.StatusIdle
	s.err = ""
	s.refetched = map[int64]struct{}{}
}

// Get looks up a route on the loaded page.
func (s *RoutesPageStore) Get(id int64) (models.Route, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return models.Route{}, false
	}
	return findByID(s.page.Content, id)
}

func (s *RoutesPageStore) Snapshot() PageSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PageSnapshot{
		Page:      s.page.Clone(),
		Request:   s.request,
		Placement: s.placement,
		Status:    s.status,
		Error:     s.err,
	}
}
