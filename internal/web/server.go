// Package web serves the member-facing registration portal. An outer chi mux
// carries middleware, health checks, and form endpoints; the portal pages
// themselves are dispatched through the ordered path router behind the
// app-shell cache.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/youthcamp/portal/internal/apiclient"
	"github.com/youthcamp/portal/internal/config"
	"github.com/youthcamp/portal/internal/router"
	"github.com/youthcamp/portal/internal/selectbox"
	"github.com/youthcamp/portal/internal/settings"
	"github.com/youthcamp/portal/internal/shell"
	"github.com/youthcamp/portal/internal/statestore"
)

const sessionCookie = "portal_session"

// Server is the portal HTTP server.
type Server struct {
	config   config.Server
	api      *apiclient.Client
	settings *settings.Store
	state    statestore.KV
	pages    *router.Router
	mux      *chi.Mux
	upgrader websocket.Upgrader

	widgets   *sessionCache[*selectbox.Select]
	histories *sessionCache[*router.History]
}

// NewServer wires the portal server. The settings store is injected, never
// global; every page reads camp configuration through it.
func NewServer(
	cfg config.Server,
	shellCfg config.Shell,
	api *apiclient.Client,
	store *settings.Store,
	state statestore.KV,
) (*Server, *shell.Cache) {
	s := &Server{
		config:    cfg,
		api:       api,
		settings:  store,
		state:     state,
		widgets:   newSessionCache[*selectbox.Select](sessionTTL, sessionCap),
		histories: newSessionCache[*router.History](sessionTTL, sessionCap),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	s.setupPages()
	pageStack := s.pageRecoverer(http.HandlerFunc(s.pages.ServeHTTP))
	cache := shell.New(shellCfg.Version, state, shellCfg.Precache, pageStack)
	s.setupMux(cache)

	return s, cache
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.mux
}

// setupPages registers the portal routes. Order matters: the literal /new
// must precede /new/:category, and /registration must precede
// /registration/:section.
func (s *Server) setupPages() {
	pr := router.New()
	pr.Handle("/", s.pageHome)
	pr.Handle("/new", s.pagePrices)
	pr.Handle("/new/:category", s.pageRegister)
	pr.Handle("/existing/:action", s.pageExisting)
	pr.Handle("/registration", s.pageRegistrationStart)
	pr.Handle("/registration/:section", s.pageRegistrationSection)
	pr.Fallback(s.pageHome)
	s.pages = pr
}

// setupMux configures the outer router and middleware.
func (s *Server) setupMux(pageHandler http.Handler) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Get("/static/app.js", s.handleAppJS)
	r.Get("/ws/settings", s.handleSettingsWS)
	r.Get("/partial/select/{widget}", s.handleSelectWidget)

	r.Post("/settings/refresh", s.handleSettingsRefresh)
	r.Post("/submit/registration", s.handleSubmitRegistration)
	r.Post("/submit/search", s.handleSubmitSearch)
	r.Post("/submit/slip", s.handleSubmitSlip)
	r.Get("/payment/{gateway}/callback", s.handlePaymentCallback)
	r.Get("/donations/callback", s.handleDonationCallback)

	// Everything else is a portal page.
	r.NotFound(pageHandler.ServeHTTP)

	s.mux = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.settings.Snapshot().Loaded() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "waiting for camp settings",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// sessionID returns the visitor's session ID, setting the cookie on first
// contact.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
