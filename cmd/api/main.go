// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Yomira publishing HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the document store (PostgreSQL with migrations, or SQLite).
//  4. Connect to Redis.
//  5. Connect the asset provider.
//  6. Wire HTTP handlers.
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

	"github.com/taibuivan/yomira-publish/internal/api"
	"github.com/taibuivan/yomira-publish/internal/bootstrap"
	"github.com/taibuivan/yomira-publish/internal/core/chapter"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/config"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/progress"
	redisstore "github.com/taibuivan/yomira-publish/internal/platform/redis"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
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

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")
	must(log, cfg.ValidateServer(), "validate server configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
		slog.String("assets", cfg.AssetProvider),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Document Store ─────────────────────────────────────────────────
	store, err := bootstrap.OpenStore(startupCtx, cfg, true, log)
	must(log, err, "open document store")
	defer func() {
		log.Info("closing document store", slog.String("driver", store.Driver))
		store.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	documents := comic.NewCachedStore(store, rdb, cfg.ComicCacheTTL, log)
	tracker := progress.NewRedisTracker(rdb, cfg.ProgressTTL, log)

	// ── 5. Asset Provider ─────────────────────────────────────────────────
	assets, err := bootstrap.NewAssetClient(cfg, log)
	must(log, err, "initialize asset provider")

	// ── 6. Token Verification ─────────────────────────────────────────────
	// Tokens are issued by the identity service; only the public key is loaded.
	jwtSvc, err := sec.NewTokenService("", cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt verifier")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		StoreName: store.Driver,
		CheckDatabase: func() error {
			return store.Ping(context.Background())
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		AssetsName: assets.ProviderName(),
		CheckAssets: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return assets.Ping(ctx)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	comicService := comic.NewService(documents, assets, log)
	chapterService := chapter.NewService(documents, assets, cfg.UploadConcurrency, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Comic:     comic.NewHandler(comicService),
		Chapter: chapter.NewHandler(chapterService, tracker, chapter.HandlerOptions{
			MaxFiles: cfg.UploadMaxFiles,
			MaxBytes: cfg.UploadMaxBytes,
		}),
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors must be returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
