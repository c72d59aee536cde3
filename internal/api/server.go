// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/buivan/fedisearch/internal/core/search"
	"github.com/buivan/fedisearch/internal/core/site"
	"github.com/buivan/fedisearch/internal/platform/config"
	"github.com/buivan/fedisearch/internal/platform/constants"
	"github.com/buivan/fedisearch/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Site serves the known-instance listing behind the UI's instance picker.
	Site *site.Handler

	// Search serves ranked full-text queries over the crawled index.
	Search *search.Handler

	// Version reports the running release.
	Version http.HandlerFunc

	// Heartbeat is the development readiness probe.
	Heartbeat http.HandlerFunc

	// Crawl starts an immediate crawl pass (development only).
	Crawl http.HandlerFunc
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. Static UI assets are served from uiDir as a
// fallthrough for every path no API route claims.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, h Handlers, uiDir string) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Application API
	// Read-only endpoints, cacheable for a full day. Crawl passes only add
	// data, so stale responses are harmless.
	r.Group(func(cached chi.Router) {
		cached.Use(middleware.CacheControl(constants.CachePublicDay))

		cached.Get("/version", h.Version)
		h.Search.RegisterRoutes(cached)
		h.Site.RegisterRoutes(cached)
	})

	// # Operational Endpoints
	// Only exposed in development. Never cached.
	if cfg.IsDevelopment() {
		r.Group(func(ops chi.Router) {
			ops.Use(middleware.CacheControl(constants.CacheNoStore))

			ops.Get("/heartbeat", h.Heartbeat)
			ops.Get("/crawl", h.Crawl)
		})
	}

	// # Static UI
	// Everything else falls through to the bundled frontend assets, with
	// index.html as the default document.
	r.Handle("/*", http.FileServer(http.Dir(uiDir)))

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
