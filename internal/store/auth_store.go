package store

import (
	"context"
	"strings"
	"sync"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
)

// IdentityBackend verifies a credential against the backend.
type IdentityBackend interface {
	Me(ctx context.Context, token string) (models.User, error)
}

// IdentityStorage persists a session's identity across page reloads.
type IdentityStorage interface {
	Save(ctx context.Context, sessionID string, id auth.Identity) error
	Load(ctx context.Context, sessionID string) (*auth.Identity, error)
	Delete(ctx context.Context, sessionID string) error
}

type AuthSnapshot struct {
	Username string            `json:"username,omitempty"`
	Role     constants.Role    `json:"role,omitempty"`
	Status   models.AuthStatus `json:"status"`
	Error    string            `json:"error,omitempty"`
}

// AuthStore holds at most one identity for a session and keeps the session's
// request context in step with it.
type AuthStore struct {
	sessionID string
	backend   IdentityBackend
	rc        *auth.RequestContext
	storage   IdentityStorage

	mu       sync.Mutex
	identity *auth.Identity
	status   models.AuthStatus
	err      string
	seq      uint64
}

func NewAuthStore(sessionID string, backend IdentityBackend, rc *auth.RequestContext, storage IdentityStorage) *AuthStore {
	return &AuthStore{
		sessionID: sessionID,
		backend:   backend,
		rc:        rc,
		storage:   storage,
		status:    models.AuthIdle,
	}
}

// Restore loads a persisted identity into the store and request context.
func (s *AuthStore) Restore(ctx context.Context) error {
	id, err := s.storage.Load(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if id == nil || !id.Valid() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rc.Init(id)
	s.identity = id
	s.status = models.AuthAuthenticated
	s.err = ""
	return nil
}

// Login verifies username and password with the identity endpoint. On failure
// any previous identity, credential and persisted copy are cleared.
func (s *AuthStore) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.status = models.AuthLoading
	s.err = ""
	s.mu.Unlock()

	if username == "" || password == "" {
		s.fail(ctx, seq, constants.MsgLoginFailedGeneric)
		return ErrMissingCredentials
	}

	token := auth.BasicToken(username, password)
	user, err := s.backend.Me(ctx, token)
	if err != nil {
		s.fail(ctx, seq, providers.UserMessage(err, constants.MsgLoginFailed))
		return err
	}

	id := auth.Identity{Username: user.Username, Role: user.Role, Token: token}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return nil
	}
	s.rc.Set(id)
	s.identity = &id
	s.status = models.AuthAuthenticated
	if err := s.storage.Save(ctx, s.sessionID, id); err != nil {
		logging.Warn("failed to persist identity", "session", s.sessionID, "error", err)
	}
	return nil
}

func (s *AuthStore) fail(ctx context.Context, seq uint64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}
	s.clearLocked(ctx)
	s.status = models.AuthError
	s.err = message
}

// Logout clears the identity everywhere. A login still in flight is discarded.
func (s *AuthStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.clearLocked(ctx)
	s.status = models.AuthIdle
	s.err = ""
}

func (s *AuthStore) clearLocked(ctx context.Context) {
	s.identity = nil
	s.rc.Clear()
	if err := s.storage.Delete(ctx, s.sessionID); err != nil {
		logging.Warn("failed to remove persisted identity", "session", s.sessionID, "error", err)
	}
}

func (s *AuthStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
	if s.status == models.AuthError {
		s.status = models.AuthIdle
	}
}

// Identity returns the signed-in identity, if any.
func (s *AuthStore) Identity() (auth.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return auth.Identity{}, false
	}
	return *s.identity, true
}

func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := AuthSnapshot{Status: s.status, Error: s.err}
	if s.identity != nil {
		snap.Username = s.identity.Username
		snap.Role = s.identity.Role
	}
	return snap
}
