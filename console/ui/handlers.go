package ui

import (
	"errors"
	"net/http"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/middleware"
	"routegraph/dashboard/internal/models"
	"routegraph/dashboard/internal/providers"
	"routegraph/dashboard/internal/workspace"
)

var themes = map[string]bool{"light": true, "dark": true, "high-contrast": true}

// DashboardHandler renders the shell: the login form for guests, the tab
// bar for signed-in users.
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ws := middleware.WorkspaceFrom(r)
	state := ws.Snapshot()

	data := map[string]interface{}{
		"Title": "Routes dashboard",
		"Theme": middleware.GetTheme(r.Context()),
		"Error": state.Auth.Error,
	}
	if id, err := ws.Identity(); err == nil {
		active := state.Tab
		if raw := r.URL.Query().Get("tab"); raw != "" {
			if tab, err := workspace.ParseTab(raw); err == nil && (!tab.AdminOnly() || id.IsAdmin()) {
				active = tab
			}
		}
		data["Signed"] = true
		data["Username"] = id.Username
		data["Role"] = id.Role
		data["Tabs"] = state.Tabs
		data["Active"] = active
	}
	RenderTemplate(w, "dashboard", http.StatusOK, data)
}

// ResetPasswordView handles GET /reset-password?token=...
func ResetPasswordView(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	data := map[string]interface{}{
		"Title": "Reset password",
		"Theme": middleware.GetTheme(r.Context()),
		"Token": token,
	}
	if token == "" {
		data["Error"] = constants.MsgResetTokenMissing
	}
	RenderTemplate(w, "reset", http.StatusOK, data)
}

// ResetPasswordSubmit handles the form posted by the reset view.
func ResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	ws := middleware.WorkspaceFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}

	req := models.PasswordResetConfirm{
		Token:           r.PostForm.Get("token"),
		NewPassword:     r.PostForm.Get("newPassword"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
	}
	data := map[string]interface{}{
		"Title": "Reset password",
		"Theme": middleware.GetTheme(r.Context()),
		"Token": req.Token,
	}

	err := ws.ConfirmPasswordReset(r.Context(), req)
	if err != nil {
		var validation models.ValidationError
		message := providers.UserMessage(err, constants.MsgResetConfirmFailed)
		if errors.As(err, &validation) {
			message = validation.Error()
		}
		data["Error"] = message
		RenderTemplate(w, "reset", http.StatusBadRequest, data)
		return
	}
	data["Done"] = true
	RenderTemplate(w, "reset", http.StatusOK, data)
}

// SetThemeHandler stores the theme preference in a cookie.
func SetThemeHandler(w http.ResponseWriter, r *http.Request) {
	theme := r.FormValue("theme")
	if !themes[theme] {
		theme = "light"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "theme_preference",
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success": true, "theme": "` + theme + `"}`))
}
