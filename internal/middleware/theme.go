package middleware

import (
	"context"
	"net/http"
)

const themeKey contextKey = "theme"

var validThemes = map[string]bool{
	"light":         true,
	"dark":          true,
	"high-contrast": true,
}

// ThemeMiddleware injects the dashboard theme preference into the request context.
func ThemeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme := "light"
		if cookie, err := r.Cookie("theme_preference"); err == nil && validThemes[cookie.Value] {
			theme = cookie.Value
		}
		ctx := context.WithValue(r.Context(), themeKey, theme)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetTheme(ctx context.Context) string {
	if theme, ok := ctx.Value(themeKey).(string); ok {
		return theme
	}
	return "light"
}
