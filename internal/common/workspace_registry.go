package common

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/live"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/workspace"
)

// WorkspaceRegistry owns the workspace of every live browser session. An
// idle workspace expires after the session TTL and leaves the hub.
type WorkspaceRegistry struct {
	cache   *cache.Cache
	hub     *live.Hub
	factory func(sessionID string) *workspace.Workspace

	// serializes lookups with creation so a session gets one workspace
	mu sync.Mutex
}

func NewWorkspaceRegistry(ttl time.Duration, hub *live.Hub, factory func(sessionID string) *workspace.Workspace) *WorkspaceRegistry {
	cleanup := ttl / 4
	if cleanup < time.Second {
		cleanup = time.Second
	}
	r := &WorkspaceRegistry{
		cache:   cache.New(ttl, cleanup),
		hub:     hub,
		factory: factory,
	}
	r.cache.OnEvicted(func(key string, value interface{}) {
		ws, ok := value.(*workspace.Workspace)
		if !ok {
			return
		}
		r.hub.Unregister(ws.ID)
		ws.Close()
		logging.Debug("workspace evicted", "session_id", ws.ID)
	})
	return r
}

// Get returns the workspace of a session and extends its lifetime.
func (r *WorkspaceRegistry) Get(sessionID string) (*workspace.Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(sessionID)
}

func (r *WorkspaceRegistry) getLocked(sessionID string) (*workspace.Workspace, bool) {
	val, found := r.cache.Get(workspaceKey(sessionID))
	if !found {
		return nil, false
	}
	ws := val.(*workspace.Workspace)
	r.cache.Set(workspaceKey(sessionID), ws, cache.DefaultExpiration)
	return ws, true
}

// Open returns the workspace of a session, creating it on first use. A new
// workspace restores any persisted identity and joins the hub.
func (r *WorkspaceRegistry) Open(ctx context.Context, sessionID string) *workspace.Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ws, ok := r.getLocked(sessionID); ok {
		return ws
	}

	ws := r.factory(sessionID)
	if err := ws.Auth.Restore(ctx); err != nil {
		logging.Warn("failed to restore identity", "session_id", sessionID, "error", err)
	}
	r.cache.Set(workspaceKey(sessionID), ws, cache.DefaultExpiration)
	r.hub.Register(sessionID, ws)
	logging.Debug("workspace opened", "session_id", sessionID)
	return ws
}

// Remove drops a session's workspace immediately.
func (r *WorkspaceRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(workspaceKey(sessionID))
}

func (r *WorkspaceRegistry) Len() int {
	return r.cache.ItemCount()
}

func workspaceKey(sessionID string) string {
	return string(constants.CachePrefixWorkspace) + sessionID
}
