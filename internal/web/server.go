// Package web exposes the ingestion service over HTTP.
package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/bookingest/internal/config"
	"github.com/JonMunkholm/bookingest/internal/ingest"
	"github.com/JonMunkholm/bookingest/internal/store"
	mw "github.com/JonMunkholm/bookingest/internal/web/middleware"
)

// Ingester runs spreadsheet ingestions.
type Ingester interface {
	Ingest(ctx context.Context, src ingest.FileSource, r io.Reader) (*ingest.Result, error)
	Validate(ctx context.Context, fileName, contentType string, r io.Reader) (*ingest.Preview, error)
	Limiter() *ingest.Limiter
}

// Repository is the read side of the store.
type Repository interface {
	Ping(ctx context.Context) error
	GetIngestion(ctx context.Context, id uuid.UUID) (store.IngestionDetail, error)
	RecentIngestions(ctx context.Context, limit int) ([]ingest.Run, error)
	GetBook(ctx context.Context, isbn string) (store.StoredBook, error)
	GetOnix(ctx context.Context, isbn string) ([]byte, error)
}

// Server is the HTTP server for the ingestion API.
type Server struct {
	ingester Ingester
	repo     Repository
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server with middleware and routes configured.
func NewServer(ingester Ingester, repo Repository, cfg *config.Config) *Server {
	s := &Server{
		ingester: ingester,
		repo:     repo,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Ingestion is bounded by the service's own timeout.
		r.Post("/ingest", s.handleIngest)
		r.Post("/validate", s.handleValidate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/ingestions", s.handleListIngestions)
			r.Get("/ingestions/{id}", s.handleGetIngestion)
			r.Get("/books/{isbn}", s.handleGetBook)
			r.Get("/books/{isbn}/onix", s.handleGetOnix)
			r.Get("/issues/{code}", s.handleIssueGuidance)
			r.Get("/template", s.handleDownloadTemplate)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses. The API serves
// JSON and XML only, so nothing may be loaded by a browser.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
