package web

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// pageRecoverer converts a panic in a page handler into the error view
// instead of a dropped connection. It sits inside the shell cache, so the
// rendered error is never cached.
func (s *Server) pageRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			slog.Error("page handler panicked",
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			w.Header().Set("Cache-Control", "no-store")
			s.render(w, http.StatusInternalServerError, "error", pageData{
				Title: "Something went wrong",
				Error: "an unexpected error occurred, reload the page or return home",
			})
		}()
		next.ServeHTTP(w, r)
	})
}
