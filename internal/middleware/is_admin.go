package middleware

import (
	"net/http"
	"time"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
)

var nowFunc = time.Now

// IsSignedInMiddleware rejects requests of sessions without an identity.
func IsSignedInMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws := WorkspaceFrom(r)
			if ws == nil {
				common.RespondError(w, nowFunc(), nil, constants.MsgSignInFirst, http.StatusUnauthorized)
				return
			}
			if _, err := ws.Identity(); err != nil {
				logging.Debug("refusing anonymous session", "path", r.URL.Path, "session_id", auth.GetSessionID(r.Context()))
				common.RespondError(w, nowFunc(), nil, constants.MsgSignInFirst, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAdminMiddleware hides admin-only endpoints from other roles. The backend
// enforces the role again on every call.
func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws := WorkspaceFrom(r)
			if ws == nil {
				common.RespondError(w, nowFunc(), nil, constants.MsgSignInFirst, http.StatusUnauthorized)
				return
			}
			id, err := ws.Identity()
			if err != nil {
				common.RespondError(w, nowFunc(), nil, constants.MsgSignInFirst, http.StatusUnauthorized)
				return
			}
			if !id.IsAdmin() {
				logging.Info("refusing non-admin session", "path", r.URL.Path, "session_id", auth.GetSessionID(r.Context()), "role", id.Role)
				common.RespondError(w, nowFunc(), nil,
					constants.GetErrorMessage(constants.ErrCodeForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
