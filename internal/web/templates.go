package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static/app.js
var appJS []byte

var funcs = template.FuncMap{
	"money": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("₦%.0f", *v)
	},
	"remaining": func(v *int) string {
		if v == nil {
			return "unlimited"
		}
		return fmt.Sprintf("%d left", *v)
	},
}

var pageTemplates = template.Must(
	template.New("portal").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"),
)

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
	}
}

func (s *Server) handleAppJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write(appJS)
}
