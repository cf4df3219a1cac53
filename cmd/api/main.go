// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

// Command api is the entry point for the AgroviaTech portal API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the user directory and request store (memory or PostgreSQL + migrations).
//  4. Open the session slot backend (memory or Redis).
//  5. Choose the event publisher (Kafka or log-only).
//  6. Seed demo accounts and wire the domain.
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

	"github.com/agroviatech/portal/internal/api"
	"github.com/agroviatech/portal/internal/platform/config"
	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/events"
	"github.com/agroviatech/portal/internal/platform/migration"
	pgstore "github.com/agroviatech/portal/internal/platform/postgres"
	redisstore "github.com/agroviatech/portal/internal/platform/redis"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/agrirequest"
	"github.com/agroviatech/portal/internal/users/auth"
	"github.com/agroviatech/portal/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "agrovia-portal"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "agrovia-portal"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.String("session_driver", cfg.SessionDriver),
	)

	// Root context for background workers; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	var health api.HealthDependencies

	// ── 3. Storage ────────────────────────────────────────────────────────
	var (
		directory auth.UserDirectory
		requests  agrirequest.Store
	)

	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		directory = auth.NewPostgresUserDirectory(pool)
		requests = agrirequest.NewPostgresStore(pool)
		health.CheckDatabase = func() error { return pgstore.Ping(context.Background(), pool) }
	default:
		directory = auth.NewMemoryUserDirectory()
		requests = agrirequest.NewMemoryStore()
	}

	// ── 4. Session Slots ──────────────────────────────────────────────────
	var backend session.Backend

	switch cfg.SessionDriver {
	case config.DriverRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		backend = session.NewRedisBackend(rdb, cfg.TokenTTL)
		health.CheckCache = func() error { return redisstore.Ping(context.Background(), rdb) }
	default:
		backend = session.NewMemoryBackend()
	}

	// ── 5. Domain Events ──────────────────────────────────────────────────
	var publisher events.Publisher = events.NewLogPublisher(log)

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, log)
		defer func() {
			if cerr := kafkaPublisher.Close(); cerr != nil {
				log.Error("kafka_close_failed", slog.Any("error", cerr))
			}
		}()

		publisher = events.NewBreakingPublisher(kafkaPublisher, events.DefaultBreakerConfig("kafka-events"), log)
		health.CheckEvents = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return kafkaPublisher.Ping(pingCtx)
		}
	}

	// ── 6. Security ───────────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer, cfg.TokenTTL)
	must(log, err, "initialize token service")

	hasher := sec.NewBcryptHasher(cfg.BcryptCost)

	if cfg.SeedDemoUsers {
		seeded, err := auth.SeedDemoUsers(startupCtx, directory, hasher, cfg.DemoPassword)
		must(log, err, "seed demo users")
		log.Info("demo_users_seeded", slog.Int("created", seeded))
	}

	verifier, err := auth.NewCredentialVerifier(directory, hasher)
	must(log, err, "initialize credential verifier")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	registry := auth.NewSessionRegistry(auth.Dependencies{
		Directory: directory,
		Verifier:  verifier,
		Hasher:    hasher,
		Tokens:    tokens,
		Publisher: publisher,
		Logger:    log,
	}, backend, cfg.SessionIdleTTL)
	go registry.Run(rootCtx, constants.SessionCleanupInterval)

	requestService := agrirequest.NewService(requests, publisher, log)
	promoter := agrirequest.NewAutoPromoter(agrirequest.RegistrySessions(registry), log)
	unsubscribe := requestService.Subscribe(promoter.OnTransition)
	defer unsubscribe()

	liveness, readiness := api.NewHealthHandlers(health, log)

	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Auth:         auth.NewHandler(registry, directory, tokens, backend),
		AgriRequests: agrirequest.NewHandler(requestService, promoter, registry),
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, api.Security{
		Tokens:   tokens,
		Accounts: auth.NewAccountStatus(directory),
	}, handlers)

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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		rootCancel()
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
