// Package web provides the HTTP server and handlers for the Data Sweeper UI
// and its JSON API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/datasweeper/internal/config"
	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/metrics"
	mw "github.com/JonMunkholm/datasweeper/internal/web/middleware"
)

// Server is the HTTP server for the Data Sweeper.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	validate *validator.Validate

	limiters []*ipRateLimiter
	stop     chan struct{}
}

// NewServer creates a Server serving service with the given configuration.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		router:   chi.NewRouter(),
		validate: newValidator(),
		stop:     make(chan struct{}),
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
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health checks and scraping skip rate limiting and sessions.
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Group(func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			r.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
		}

		// Pages
		r.With(s.withSession(true)).Get("/", s.handleDashboard)

		uploads := r.With(s.withSession(true))
		if s.cfg.Rate.Enabled {
			uploads = uploads.With(s.newRateLimiter(s.cfg.Rate.UploadLimit).middleware)
		}
		uploads.Post("/upload", s.handleUpload)

		// Per-file widgets
		r.Route("/files/{fileID}", func(r chi.Router) {
			r.Use(s.withSession(false))
			r.Use(s.withFileID)

			r.Post("/clean", s.handleToggleClean)
			r.Post("/dedupe", s.handleTrigger(core.ActionDedupe))
			r.Post("/impute", s.handleTrigger(core.ActionImpute))
			r.Post("/columns", s.handleSelectColumns)
			r.Post("/visualize", s.handleToggleVisualize)
			r.Post("/convert", s.handleConvert)
			r.Get("/download", s.handleDownload)
			r.Get("/chart.svg", s.handleChart)
			r.Post("/remove", s.handleRemove)
		})

		// JSON API
		r.Route("/api", func(r chi.Router) {
			r.Use(mw.APIKeyAuth(s.cfg.Security))
			r.Use(s.withSession(false))

			r.Get("/files", s.handleAPIListFiles)
			r.With(s.withFileID).Get("/files/{fileID}", s.handleAPIFile)
		})
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
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

const csp = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// Inline styles and the checkbox auto-submit handlers need
				// 'unsafe-inline'.
				h.Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cleanupInterval is how often idle rate limiter entries are dropped.
const cleanupInterval = time.Minute
