package auth

import (
	"context"
	"net/http"
	"sync"
)

// RequestContext holds the credential attached to every outgoing backend
// request of one session. It is written only by login, logout and session
// restore; all writers replace or clear the identity in one step.
type RequestContext struct {
	mu       sync.RWMutex
	identity *Identity
}

func NewRequestContext() *RequestContext {
	return &RequestContext{}
}

// Init seeds the context from a restored session. A nil or incomplete
// identity leaves it empty.
func (rc *RequestContext) Init(id *Identity) {
	if id == nil || !id.Valid() {
		return
	}
	rc.Set(*id)
}

func (rc *RequestContext) Set(id Identity) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.identity = &id
}

func (rc *RequestContext) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.identity = nil
}

// Current returns a copy of the identity, if any.
func (rc *RequestContext) Current() (Identity, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	if rc.identity == nil {
		return Identity{}, false
	}
	return *rc.identity, true
}

// Decorate sets the Authorization header when a credential is present.
// Requests that already carry one (the login check) are left alone.
func (rc *RequestContext) Decorate(req *http.Request) {
	if req.Header.Get("Authorization") != "" {
		return
	}
	if id, ok := rc.Current(); ok {
		req.Header.Set("Authorization", "Basic "+id.Token)
	}
}

type contextKey string

var sessionIDKey contextKey = "session_id"
var sessionDataKey contextKey = "session_data"

func SetSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func GetSessionID(ctx context.Context) string {
	if val, ok := ctx.Value(sessionIDKey).(string); ok {
		return val
	}
	return ""
}

// SetSessionData stores the per-session state bundle for handlers.
func SetSessionData(ctx context.Context, sessionData interface{}) context.Context {
	return context.WithValue(ctx, sessionDataKey, sessionData)
}

// GetSessionData retrieves session data from context
func GetSessionData(ctx context.Context) interface{} {
	return ctx.Value(sessionDataKey)
}
