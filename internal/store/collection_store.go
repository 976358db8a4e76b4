package store

import (
	"context"
	"sync"

	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
)

// CollectionBackend is the REST surface behind an unpaged collection.
type CollectionBackend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, body T) (T, error)
	Update(ctx context.Context, id int64, body T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// CollectionSnapshot is a point-in-time copy of a collection store.
type CollectionSnapshot[T any] struct {
	Items  []T                `json:"items"`
	Status models.FetchStatus `json:"status"`
	Error  string             `json:"error,omitempty"`
}

// CollectionStore caches the full listing of one entity kind. Every change to
// the cached items goes through Apply under the store mutex.
type CollectionStore[T models.Identifiable] struct {
	kind          models.EntityKind
	backend       CollectionBackend[T]
	metrics       *metrics.MetricsRegistry
	fetchFallback string

	mu     sync.Mutex
	items  []T
	status models.FetchStatus
	err    string
	seq    uint64
}

func NewCollectionStore[T models.Identifiable](
	kind models.EntityKind,
	backend CollectionBackend[T],
	fetchFallback string,
	m *metrics.MetricsRegistry,
) *CollectionStore[T] {
	return &CollectionStore[T]{
		kind:          kind,
		backend:       backend,
		metrics:       m,
		fetchFallback: fetchFallback,
		items:         []T{},
		status:        models.StatusIdle,
	}
}

// FetchAll replaces the collection with the backend listing. A response
// that arrives after a newer FetchAll was started is discarded.
func (s *CollectionStore[T]) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.status = models.StatusLoading
	s.mu.Unlock()

	items, err := s.backend.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.metrics.StaleResponse(string(s.kind))
		logging.Debug("discarding stale listing", "entity", s.kind, "seq", seq, "latest", s.seq)
		return nil
	}
	if err != nil {
		s.status = models.StatusFailed
		s.err = providers.UserMessage(err, s.fetchFallback)
		return err
	}
	if items == nil {
		items = []T{}
	}
	s.items = items
	s.status = models.StatusSucceeded
	s.err = ""
	return nil
}

// Create sends body to the backend and merges the canonical result.
// Failures are returned and never stored.
func (s *CollectionStore[T]) Create(ctx context.Context, body T) (T, error) {
	created, err := s.backend.Create(ctx, body)
	if err != nil {
		return created, err
	}
	s.ApplyEvent(models.ChangeEvent[T]{Entity: s.kind, Action: models.ActionCreate, Data: created, Origin: models.OriginLocal})
	return created, nil
}

func (s *CollectionStore[T]) Update(ctx context.Context, id int64, body T) (T, error) {
	updated, err := s.backend.Update(ctx, id, body)
	if err != nil {
		return updated, err
	}
	s.ApplyEvent(models.ChangeEvent[T]{Entity: s.kind, Action: models.ActionUpdate, Data: updated, Origin: models.OriginLocal})
	return updated, nil
}

func (s *CollectionStore[T]) Delete(ctx context.Context, id int64) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := findByID(s.items, id); ok {
		s.applyLocked(models.ChangeEvent[T]{Entity: s.kind, Action: models.ActionDelete, Data: existing, Origin: models.OriginLocal})
	}
	return nil
}

// ApplyEvent merges an event from either a local response or the live channel.
func (s *CollectionStore[T]) ApplyEvent(event models.ChangeEvent[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(event)
}

func (s *CollectionStore[T]) applyLocked(event models.ChangeEvent[T]) {
	s.items = Apply(s.items, event)
	s.metrics.EventApplied(string(s.kind), string(event.Action), string(event.Origin))
}

// Get looks up a cached record by id.
func (s *CollectionStore[T]) Get(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findByID(s.items, id)
}

// Reset empties the collection and discards any fetch still in flight.
func (s *CollectionStore[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.items = []T{}
	s.status = models.StatusIdle
	s.err = ""
}

func (s *CollectionStore[T]) Status() models.FetchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *CollectionStore[T]) Snapshot() CollectionSnapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CollectionSnapshot[T]{
		Items:  append([]T{}, s.items...),
		Status: s.status,
		Error:  s.err,
	}
}
