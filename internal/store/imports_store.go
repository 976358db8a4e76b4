package store

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
)

// ImportsBackend is the REST surface behind the import history.
type ImportsBackend interface {
	ImportOperations(ctx context.Context, scope constants.ImportsScope) ([]models.ImportOperation, error)
	UploadRoutes(ctx context.Context, filename string, file io.Reader) (models.ImportOperation, error)
}

type ImportsSnapshot struct {
	Scope      constants.ImportsScope   `json:"scope"`
	Operations []models.ImportOperation `json:"operations"`
	Status     models.FetchStatus       `json:"status"`
	Error      string                   `json:"error,omitempty"`
}

// ImportsStore caches one import history listing, selected by scope.
// The two scopes are never merged.
type ImportsStore struct {
	backend ImportsBackend
	metrics *metrics.MetricsRegistry
	refresh []func(ctx context.Context) error

	mu     sync.Mutex
	scope  constants.ImportsScope
	items  []models.ImportOperation
	status models.FetchStatus
	err    string
	seq    uint64
}

// NewImportsStore creates the store. refresh is run once, concurrently, after
// every accepted upload.
func NewImportsStore(backend ImportsBackend, m *metrics.MetricsRegistry, refresh ...func(ctx context.Context) error) *ImportsStore {
	return &ImportsStore{
		backend: backend,
		metrics: m,
		refresh: refresh,
		scope:   constants.ImportsScopeMine,
		items:   []models.ImportOperation{},
		status:  models.StatusIdle,
	}
}

// SetScope switches the listing and refetches it. Selecting the scope that
// is already loaded does nothing.
func (s *ImportsStore) SetScope(ctx context.Context, scope constants.ImportsScope) error {
	if !scope.Valid() {
		return ErrInvalidScope
	}
	s.mu.Lock()
	if s.scope == scope && s.status != models.StatusIdle {
		s.mu.Unlock()
		return nil
	}
	s.scope = scope
	s.items = []models.ImportOperation{}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh reloads the current scope and replaces the cached list.
func (s *ImportsStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	scope := s.scope
	s.status = models.StatusLoading
	s.mu.Unlock()

	ops, err := s.backend.ImportOperations(ctx, scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq || scope != s.scope {
		s.metrics.StaleResponse("imports")
		return nil
	}
	if err != nil {
		fallback := constants.MsgFetchImportsMine
		if scope == constants.ImportsScopeAll {
			fallback = constants.MsgFetchImportsAll
		}
		s.status = models.StatusFailed
		s.err = providers.UserMessage(err, fallback)
		return err
	}
	if ops == nil {
		ops = []models.ImportOperation{}
	}
	s.items = ops
	s.status = models.StatusSucceeded
	s.err = ""
	return nil
}

// Upload submits a routes file. Once the backend accepts it, the returned
// operation is prepended and the dependent collections are refreshed; their
// failures are recorded in their own stores.
func (s *ImportsStore) Upload(ctx context.Context, filename string, file io.Reader) (models.ImportOperation, error) {
	op, err := s.backend.UploadRoutes(ctx, filename, file)
	if err != nil {
		return op, err
	}
	s.Prepend(op)

	// each refresh records its own failure; one must not cancel the others
	var g errgroup.Group
	for _, refresh := range s.refresh {
		g.Go(func() error {
			return refresh(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		logging.Warn("refresh after import failed", "operation", op.ID, "error", err)
	}
	return op, nil
}

// Prepend puts op at the front, replacing an older copy of the same operation.
func (s *ImportsStore) Prepend(op models.ImportOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ImportOperation, 0, len(s.items)+1)
	out = append(out, op)
	for _, existing := range s.items {
		if existing.ID != op.ID {
			out = append(out, existing)
		}
	}
	s.items = out
}

// Pending reports whether any cached operation may still change state.
func (s *ImportsStore) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range s.items {
		if op.Status.InProgress() {
			return true
		}
	}
	return false
}

func (s *ImportsStore) Scope() constants.ImportsScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Reset returns the store to the unloaded "mine" listing.
func (s *ImportsStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.scope = constants.ImportsScopeMine
	s.items = []models.ImportOperation{}
	s.status = models.StatusIdle
	s.err = ""
}

func (s *ImportsStore) Snapshot() ImportsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ImportsSnapshot{
		Scope:      s.scope,
		Operations: append([]models.ImportOperation{}, s.items...),
		Status:     s.status,
		Error:      s.err,
	}
}
