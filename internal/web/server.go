// Package web provides the HTTP server and handlers for list imports.
package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/listimport/internal/config"
	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/JonMunkholm/listimport/internal/logging"
	"github.com/JonMunkholm/listimport/internal/ratelimit"
	mw "github.com/JonMunkholm/listimport/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ImportService is the slice of core.Service the handlers use.
type ImportService interface {
	Collections() []core.CollectionInfo
	MaxFileSize() int64
	LimiterStatus() core.ImportLimiterStatus
	Detect(ctx context.Context, data io.Reader, mapping core.ColumnMap) (*core.DetectResult, error)
	Import(ctx context.Context, req core.ImportRequest) (*core.ImportJob, error)
	ListImports(ctx context.Context, ownerID uuid.UUID) ([]core.ImportSummary, error)
	ImportIssues(ctx context.Context, ownerID, importID uuid.UUID) (*core.ImportSummary, []core.ImportIssue, error)
}

var _ ImportService = (*core.Service)(nil)

// Server is the HTTP server for the import API.
type Server struct {
	service  ImportService
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	validate *Validator

	limiters []*ratelimit.KeyedRateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service ImportService, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		router:   chi.NewRouter(),
		validate: NewValidator(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(mw.Metrics)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(mw.RateLimit(s.newLimiter(s.cfg.Rate.RequestsPerMinute), mw.ByIP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	importLimit := mw.RateLimit(s.newLimiter(s.cfg.Rate.ImportLimit), mw.ByUser)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))
		r.Use(mw.RequireUser)

		r.Get("/collections", s.handleListCollections)
		r.Get("/imports/status", s.handleLimiterStatus)

		// Detection never writes, so it is not subject to the import limit.
		r.Post("/import/detect", s.handleDetect)

		r.Group(func(r chi.Router) {
			r.Use(importLimit)
			r.Post("/watchlist/import", s.handleImport("watchlist", ""))
			r.Post("/lists/{listID}/import", s.handleImport("list", "listID"))
			r.Post("/playlists/{playlistID}/import", s.handleImport("playlist", "playlistID"))
		})

		r.Group(func(r chi.Router) {
			if s.cfg.Server.RequestTimeout > 0 {
				r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
			}
			r.Get("/imports", s.handleListImports)
			r.Get("/imports/{jobID}", s.handleGetImport)
			r.Get("/imports/{jobID}/issues", s.handleExportIssues)
		})
	})
}

// newLimiter returns a per-minute keyed limiter, or nil when rate limiting
// is disabled.
func (s *Server) newLimiter(perMinute int) *ratelimit.KeyedRateLimiter {
	if !s.cfg.Rate.Enabled || perMinute <= 0 {
		return nil
	}
	l := ratelimit.New(ratelimit.PerMinute(perMinute), perMinute)
	s.limiters = append(s.limiters, l)
	return l
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	logging.FromContext(context.Background()).Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.Stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(csp bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if csp {
				h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https://image.tmdb.org data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// handleHealth reports liveness and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.service.LimiterStatus(),
		"time":    time.Now().UTC(),
	})
}
