// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Fedisearch server: the HTTP API,
// the bundled UI, and the federation crawler in one process.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Ensure the index schema exists (idempotent).
//  5. Connect to Redis when a cache URL is configured.
//  6. Wire domain services and start the crawler runner.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buivan/fedisearch/internal/api"
	"github.com/buivan/fedisearch/internal/core/search"
	"github.com/buivan/fedisearch/internal/core/site"
	"github.com/buivan/fedisearch/internal/crawler"
	"github.com/buivan/fedisearch/internal/index"
	"github.com/buivan/fedisearch/internal/platform/config"
	"github.com/buivan/fedisearch/internal/platform/constants"
	"github.com/buivan/fedisearch/internal/platform/database/schema"
	pgstore "github.com/buivan/fedisearch/internal/platform/postgres"
	redisstore "github.com/buivan/fedisearch/internal/platform/redis"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Fedisearch] service_initializing")

	// The only positional argument selects the static UI directory.
	uiDirectory := "./ui"
	if len(os.Args) > 1 {
		uiDirectory = os.Args[1]
	}

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.IsDevelopment() {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.Port),
		slog.String("seed_instance", cfg.Crawler.SeedInstance),
	)

	// Application-scoped context. Cancelled once shutdown begins so that
	// background maintenance goroutines stop with the server.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.Postgres, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Schema ─────────────────────────────────────────────────────────
	// All tables are generated from their descriptors, so a fresh database
	// becomes serviceable on first boot.
	tables := append([]schema.TableDef{site.Table}, index.Tables()...)
	must(log, pgstore.EnsureSchema(startupCtx, pool, tables), "ensure schema")

	// ── 5. Search Cache (optional) ────────────────────────────────────────
	var searchCache search.Cache
	if cfg.CacheURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.CacheURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		searchCache = search.NewRedisCache(rdb)
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	siteService := site.NewService(site.NewPostgresRepository(pool), log)
	searchService := search.NewService(search.NewPostgresRepository(pool), searchCache, log)
	ingestor := index.NewIngestor(pool, log)

	// ── 7. Crawler Runner ─────────────────────────────────────────────────
	// Per-request deadlines are applied by the fetcher, so the shared client
	// carries no timeout of its own.
	runner := crawler.NewRunner(cfg.Crawler, &http.Client{}, siteService, ingestor, log)
	runner.Start()

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Site:      site.NewHandler(siteService),
		Search:    search.NewHandler(searchService),
		Version:   api.NewVersionHandler(),
		Heartbeat: api.NewHeartbeatHandler(),
		Crawl:     api.NewCrawlHandler(runner.Trigger),
	}

	server := api.NewServer(appCtx, cfg, log, handlers, uiDirectory)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	// Stop the crawler after the API quiesces. A pass already writing a
	// page finishes that batch before the process exits.
	log.Info("stopping crawler runner")
	runner.Stop()

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
