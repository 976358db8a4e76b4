package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"routegraph/dashboard/internal/api"
	"routegraph/dashboard/internal/middleware"
)

// RegisterAPIRoutes registers the JSON surface used by the dashboard shell.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, session func(http.Handler) http.Handler, limiter *middleware.RateLimiter) {
	r.Route("/ui/api", func(uiAPI chi.Router) {
		uiAPI.Get("/health", api.HealthCheckHandler(deps))

		uiAPI.Group(func(sess chi.Router) {
			sess.Use(limiter.Middleware)
			sess.Use(session)

			// Public
			sess.Get("/state", api.StateHandler())
			sess.Post("/auth/login", api.LoginHandler())
			sess.Post("/auth/logout", api.LogoutHandler())
			sess.Get("/auth/me", api.MeHandler())
			sess.Delete("/auth/error", api.ClearAuthErrorHandler())
			sess.Post("/auth/password-reset/request", api.RequestPasswordResetHandler())
			sess.Post("/auth/password-reset/confirm", api.ConfirmPasswordResetHandler())

			// Signed-in users
			sess.Group(func(signed chi.Router) {
				signed.Use(middleware.IsSignedInMiddleware())

				signed.Post("/tabs/{tab}", api.SelectTabHandler())

				signed.Route("/routes", func(routes chi.Router) {
					routes.Get("/", api.RoutesPageHandler())
					routes.Post("/", api.CreateRouteHandler())
					routes.Get("/search", api.SearchRouteHandler())
					routes.Get("/min-distance", api.MinDistanceHandler())
					routes.Get("/group-by-rating", api.GroupByRatingHandler())
					routes.Get("/unique-ratings", api.UniqueRatingsHandler())
					routes.Get("/between", api.FindBetweenHandler())
					routes.Post("/between", api.AddBetweenHandler())
					routes.Put("/{id}", api.UpdateRouteHandler())
					routes.Delete("/{id}", api.DeleteRouteHandler())
				})

				signed.Route("/locations", func(loc chi.Router) {
					loc.Get("/", api.LocationHandlers.List())
					loc.Post("/", api.LocationHandlers.Create())
					loc.Get("/search", api.LocationHandlers.Search())
					loc.Put("/{id}", api.LocationHandlers.Update())
					loc.Delete("/{id}", api.LocationHandlers.Delete())
				})

				signed.Route("/coordinates", func(coords chi.Router) {
					coords.Get("/", api.CoordinatesHandlers.List())
					coords.Post("/", api.CoordinatesHandlers.Create())
					coords.Get("/search", api.CoordinatesHandlers.Search())
					coords.Put("/{id}", api.CoordinatesHandlers.Update())
					coords.Delete("/{id}", api.CoordinatesHandlers.Delete())
				})

				signed.Get("/imports", api.ImportsHandler())
				signed.Put("/imports/scope", api.ImportsScopeHandler())
				signed.Post("/imports", api.UploadRoutesHandler())

				// Admin-only group
				signed.Group(func(admin chi.Router) {
					admin.Use(middleware.IsAdminMiddleware())
					admin.Get("/users", api.UsersHandler())
					admin.Patch("/users/{id}/role", api.ChangeRoleHandler())
				})
			})
		})
	})
}
