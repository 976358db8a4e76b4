package store

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
)

// SearchResult is the single-record lookup shown next to a bulk list.
type SearchResult[T any] struct {
	Query  string             `json:"query,omitempty"`
	Item   *T                 `json:"item,omitempty"`
	Status models.FetchStatus `json:"status"`
	Error  string             `json:"error,omitempty"`
}

// SearchSlot performs point lookups by id. It never reads or writes the bulk
// collection of the same entity kind.
type SearchSlot[T any] struct {
	get func(ctx context.Context, id int64) (T, error)

	mu     sync.Mutex
	result SearchResult[T]
	seq    uint64
}

func NewSearchSlot[T any](get func(ctx context.Context, id int64) (T, error)) *SearchSlot[T] {
	return &SearchSlot[T]{get: get, result: SearchResult[T]{Status: models.StatusIdle}}
}

// ParseSearchID accepts only positive decimal integers.
func ParseSearchID(raw string) (int64, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, constants.MsgSearchIDRequired, ErrInvalidID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, constants.MsgSearchIDInvalid, ErrInvalidID
	}
	return id, "", nil
}

// Search replaces the slot with the lookup of raw. An invalid id is reported
// in the slot without calling the backend.
func (s *SearchSlot[T]) Search(ctx context.Context, raw string) error {
	id, msg, err := ParseSearchID(raw)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if err != nil {
		s.result = SearchResult[T]{Query: raw, Status: models.StatusFailed, Error: msg}
		s.mu.Unlock()
		return err
	}
	s.result = SearchResult[T]{Query: raw, Status: models.StatusLoading}
	s.mu.Unlock()

	item, err := s.get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return nil
	}
	if err != nil {
		message := providers.UserMessage(err, constants.MsgSearchFailed)
		if providers.IsNotFound(err) {
			message = constants.GetErrorMessage(constants.ErrCodeNotFound)
		}
		s.result = SearchResult[T]{Query: raw, Status: models.StatusFailed, Error: message}
		return err
	}
	s.result = SearchResult[T]{Query: raw, Item: &item, Status: models.StatusSucceeded}
	return nil
}

// Reset empties the slot and invalidates any lookup still in flight.
func (s *SearchSlot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.result = SearchResult[T]{Status: models.StatusIdle}
}

func (s *SearchSlot[T]) Snapshot() SearchResult[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.result
	if out.Item != nil {
		item := *out.Item
		out.Item = &item
	}
	return out
}
