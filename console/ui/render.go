package ui

import (
	"embed"
	"html/template"
	"net/http"

	"routegraph/dashboard/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{
	"dashboard": parsePage("dashboard.html"),
	"reset":     parsePage("reset.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+name))
}

// RenderTemplate renders a page with the base layout
func RenderTemplate(w http.ResponseWriter, page string, status int, data map[string]interface{}) {
	t, ok := pages[page]
	if !ok {
		http.Error(w, "Unknown page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base.html", data); err != nil {
		logging.Error("Failed to render template", "page", page, "error", err)
	}
}
