package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/live"
	"routegraph/dashboard/internal/workspace"
)

func TestMemoryIdentityStorage(t *testing.T) {
	s := NewMemoryIdentityStorage(time.Minute)
	ctx := context.Background()

	got, err := s.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	id := auth.Identity{Username: "alice", Role: constants.RoleAdmin, Token: "dG9rZW4="}
	require.NoError(t, s.Save(ctx, "s-1", id))

	got, err = s.Load(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	require.NoError(t, s.Delete(ctx, "s-1"))
	got, err = s.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionSigner_RoundTrip(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), time.Hour)

	sessionID, token, err := signer.NewSession()
	require.NoError(t, err)

	got, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestSessionSigner_Rejects(t *testing.T) {
	signer := NewSessionSigner([]byte("test-secret"), time.Hour)
	_, token, err := signer.NewSession()
	require.NoError(t, err)

	other := NewSessionSigner([]byte("other-secret"), time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	expired := NewSessionSigner([]byte("test-secret"), -time.Minute)
	_, stale, err := expired.NewSession()
	require.NoError(t, err)
	_, err = signer.Verify(stale)
	assert.ErrorIs(t, err, ErrInvalidSession)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: "x"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = signer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = signer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func newRegistry(t *testing.T, ttl time.Duration, storage *MemoryIdentityStorage) (*WorkspaceRegistry, *live.Hub) {
	t.Helper()
	hub := live.NewHub(nil)
	reg := NewWorkspaceRegistry(ttl, hub, func(sessionID string) *workspace.Workspace {
		return workspace.New(sessionID, workspace.Options{
			BackendBaseURL: "http://127.0.0.1:1",
			Placement:      constants.PlacementOptimistic,
			PageSize:       10,
			Storage:        storage,
		})
	})
	return reg, hub
}

func TestWorkspaceRegistry_OpenRestoresIdentity(t *testing.T) {
	storage := NewMemoryIdentityStorage(time.Minute)
	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, "s-1", auth.Identity{Username: "alice", Role: constants.RoleUser, Token: "dG9r"}))

	reg, hub := newRegistry(t, time.Minute, storage)

	ws := reg.Open(ctx, "s-1")
	assert.Same(t, ws, reg.Open(ctx, "s-1"))
	assert.Equal(t, 1, hub.Len())
	assert.Equal(t, 1, reg.Len())

	id, ok := ws.Context.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", id.Username)

	got, ok := reg.Get("s-1")
	require.True(t, ok)
	assert.Same(t, ws, got)

	reg.Remove("s-1")
	_, ok = reg.Get("s-1")
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())
}

func TestWorkspaceRegistry_Expiry(t *testing.T) {
	reg, hub := newRegistry(t, 50*time.Millisecond, NewMemoryIdentityStorage(time.Minute))
	reg.Open(context.Background(), "s-1")
	require.Equal(t, 1, hub.Len())

	require.Eventually(t, func() bool { return hub.Len() == 0 }, 3*time.Second, 20*time.Millisecond)
	_, ok := reg.Get("s-1")
	assert.False(t, ok)
}

func TestRespondHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, time.Now(), "ok", map[string]int{"n": 1}, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(constants.APIStatusOk), body.Status)
	assert.Equal(t, "ok", body.Message)

	rec = httptest.NewRecorder()
	RespondError(rec, time.Now(), assert.AnError, "shown to user", http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(constants.APIStatusError), body.Status)
	assert.Equal(t, "shown to user", body.Message)
}

func TestRedisIdentityStorage_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisIdentityStorage(client, time.Minute)
	ctx := context.Background()

	_, err := s.Load(ctx, "s-1")
	assert.Error(t, err)
	assert.Error(t, s.Save(ctx, "s-1", auth.Identity{Username: "a", Token: "t"}))
	assert.Error(t, s.Delete(ctx, "s-1"))
}
