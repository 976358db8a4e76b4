package store

import (
	"context"
	"sync"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
)

// UsersBackend is the REST surface behind user administration.
type UsersBackend interface {
	Users(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id int64, role constants.Role) (models.User, error)
}

type UsersSnapshot struct {
	Users      []models.User      `json:"users"`
	Status     models.FetchStatus `json:"status"`
	Error      string             `json:"error,omitempty"`
	ChangingID *int64             `json:"changingId,omitempty"`
}

// UsersStore caches the user list and tracks the one row whose role is
// being changed.
type UsersStore struct {
	backend UsersBackend

	mu         sync.Mutex
	users      []models.User
	status     models.FetchStatus
	err        string
	changingID *int64
	seq        uint64
}

func NewUsersStore(backend UsersBackend) *UsersStore {
	return &UsersStore{backend: backend, users: []models.User{}, status: models.StatusIdle}
}

func (s *UsersStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.status = models.StatusLoading
	s.mu.Unlock()

	users, err := s.backend.Users(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return nil
	}
	if err != nil {
		s.status = models.StatusFailed
		s.err = providers.UserMessage(err, constants.MsgFetchUsersFailed)
		return err
	}
	if users == nil {
		users = []models.User{}
	}
	s.users = users
	s.status = models.StatusSucceeded
	s.err = ""
	return nil
}

// UpdateRole changes one user's role. A second change for the row already
// in flight is rejected with ErrRoleChangeInProgress; failures are returned
// and not stored.
func (s *UsersStore) UpdateRole(ctx context.Context, id int64, role constants.Role) (models.User, error) {
	s.mu.Lock()
	if s.changingID != nil && *s.changingID == id {
		s.mu.Unlock()
		return models.User{}, ErrRoleChangeInProgress
	}
	s.changingID = models.IDPtr(id)
	s.mu.Unlock()

	updated, err := s.backend.UpdateUserRole(ctx, id, role)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changingID != nil && *s.changingID == id {
		s.changingID = nil
	}
	if err != nil {
		return models.User{}, err
	}
	for i := range s.users {
		if s.users[i].ID == updated.ID {
			s.users[i] = updated
		}
	}
	return updated, nil
}

func (s *UsersStore) ChangingID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changingID == nil {
		return 0, false
	}
	return *s.changingID, true
}

func (s *UsersStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.users = []models.User{}
	s.status = models.StatusIdle
	s.err = ""
	s.changingID = nil
}

func (s *UsersStore) Snapshot() UsersSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := UsersSnapshot{
		Users:  append([]models.User{}, s.users...),
		Status: s.status,
		Error:  s.err,
	}
	if s.changingID != nil {
		snap.ChangingID = models.IDPtr(*s.changingID)
	}
	return snap
}
