package middleware

import (
	"net/http"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/workspace"
)

// SessionMiddleware binds the request to the workspace named by the signed
// session cookie. A missing or invalid cookie starts a new session.
func SessionMiddleware(signer *common.SessionSigner, registry *common.WorkspaceRegistry, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
				if id, err := signer.Verify(cookie.Value); err == nil {
					sessionID = id
				} else {
					logging.Debug("rejected session cookie", "error", err)
				}
			}

			if sessionID == "" {
				id, token, err := signer.NewSession()
				if err != nil {
					common.RespondError(w, nowFunc(), err, constants.GetErrorMessage(constants.ErrCodeServerError))
					return
				}
				sessionID = id
				http.SetCookie(w, &http.Cookie{
					Name:     constants.SessionCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(signer.TTL().Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ws := registry.Open(r.Context(), sessionID)
			ctx := auth.SetSessionID(r.Context(), sessionID)
			ctx = auth.SetSessionData(ctx, ws)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WorkspaceFrom returns the workspace bound by SessionMiddleware.
func WorkspaceFrom(r *http.Request) *workspace.Workspace {
	ws, _ := auth.GetSessionData(r.Context()).(*workspace.Workspace)
	return ws
}
