package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"routegraph/dashboard/console/ui"
	"routegraph/dashboard/internal/constants"
)

// RegisterUIRoutes registers the HTML pages. Both pages need a session: the
// shell renders from it and the reset form confirms through its backend.
func RegisterUIRoutes(r chi.Router, session func(http.Handler) http.Handler) {
	r.Post("/theme", ui.SetThemeHandler)

	r.Group(func(pages chi.Router) {
		pages.Use(session)
		pages.Get("/", ui.DashboardHandler)
		pages.Get(constants.ResetPasswordPrefix, ui.ResetPasswordView)
		pages.Post(constants.ResetPasswordPrefix, ui.ResetPasswordSubmit)
	})
}
