package api

import (
	"net/http"
	"time"

	"routegraph/dashboard/internal/common"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type confirmResetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginHandler handles POST /ui/api/auth/login
//
// @Summary      Sign the session in
// @Description  Verifies the credentials with the backend identity endpoint and loads the current tab.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.APIResponse
// @Router       /ui/api/auth/login [post]
func LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)

		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, initTime, err, constants.MsgLoginFailedGeneric)
			return
		}

		err := ws.Login(r.Context(), req.Username, req.Password)
		if _, signedIn := ws.Auth.Identity(); !signedIn {
			status, message := errorStatus(err, constants.MsgLoginFailed)
			if err == nil {
				status = http.StatusUnauthorized
			}
			if snap := ws.Auth.Snapshot(); snap.Error != "" {
				message = snap.Error
			}
			common.RespondErrorData(w, initTime, message, ws.Snapshot(), status)
			return
		}
		if err != nil {
			// the failing listing keeps its own message in the state
			logging.Warn("initial load after sign-in failed", "session_id", ws.ID, "error", err)
		}
		common.RespondSuccess(w, initTime, "Signed in", ws.Snapshot())
	}
}

// LogoutHandler handles POST /ui/api/auth/logout
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)
		ws.Logout(r.Context())
		common.RespondSuccess(w, initTime, "Signed out", ws.Auth.Snapshot())
	}
}

// MeHandler handles GET /ui/api/auth/me
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "", session(r).Auth.Snapshot())
	}
}

// ClearAuthErrorHandler handles DELETE /ui/api/auth/error
func ClearAuthErrorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		ws := session(r)
		ws.Auth.ClearError()
		common.RespondSuccess(w, initTime, "", ws.Auth.Snapshot())
	}
}

// RequestPasswordResetHandler handles POST /ui/api/auth/password-reset/request
func RequestPasswordResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req models.PasswordResetRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, initTime, err, constants.MsgResetRequestFailed)
			return
		}
		if err := session(r).RequestPasswordReset(r.Context(), req); err != nil {
			respondErr(w, initTime, err, constants.MsgResetRequestFailed)
			return
		}
		common.RespondSuccess(w, initTime, "If the address is registered, a reset link has been sent", nil)
	}
}

// ConfirmPasswordResetHandler handles POST /ui/api/auth/password-reset/confirm
func ConfirmPasswordResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req confirmResetRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, initTime, err, constants.MsgResetConfirmFailed)
			return
		}
		confirm := models.PasswordResetConfirm{Token: req.Token, NewPassword: req.NewPassword, ConfirmPassword: req.ConfirmPassword}
		if err := session(r).ConfirmPasswordReset(r.Context(), confirm); err != nil {
			respondErr(w, initTime, err, constants.MsgResetConfirmFailed)
			return
		}
		common.RespondSuccess(w, initTime, "Password changed. You can sign in now.", nil)
	}
}
