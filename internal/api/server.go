// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

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
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agroviatech/portal/internal/platform/config"
	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/metrics"
	"github.com/agroviatech/portal/internal/platform/middleware"
	"github.com/agroviatech/portal/internal/users/agrirequest"
	"github.com/agroviatech/portal/internal/users/auth"
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
// New domains add a field here and a mount below.
type Handlers struct {
	// Liveness is the /health handler. It always returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles sessions, profiles and role administration.
	Auth *auth.Handler

	// AgriRequests handles the visitor → farmer request workflow.
	AgriRequests *agrirequest.Handler
}

// Security holds what the middleware chain needs to authenticate requests.
type Security struct {
	Tokens   middleware.TokenVerifier
	Accounts middleware.AccountChecker
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, security Security, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware)
	}
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	// # Client Session Binding
	// Every request past this point carries a session id; Bearer tokens win
	// over the cookie session when both are present.
	r.Group(func(app chi.Router) {
		app.Use(middleware.SessionCookie(cfg.IsProduction()))
		app.Use(middleware.Authenticate(security.Tokens, security.Accounts))
		app.Use(h.Auth.Identify)

		// # Application API
		app.Route("/api/v1", func(api chi.Router) {
			authLimiter := middleware.NewRateLimiter(context, constants.AuthRateLimitRPS, constants.AuthRateLimitBurst)
			api.With(authLimiter.Middleware).Mount("/auth", h.Auth.Routes())
			api.Mount("/agriculteur-requests", h.AgriRequests.Routes())
		})

		// # Dashboard
		// Page navigations go through the route permission table; assets do not.
		if cfg.WebRoot != "" {
			app.Handle("/*", spaHandler(cfg.WebRoot, middleware.RouteGuard(h.Auth.ResolveRole)))
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// spaHandler serves static assets as they are and every other path as the
// dashboard's index.html behind guard, so client side routes resolve.
func spaHandler(root string, guard func(http.Handler) http.Handler) http.Handler {
	files := http.FileServer(http.Dir(root))
	page := guard(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.ServeFile(writer, request, filepath.Join(root, "index.html"))
	}))

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		target := filepath.Join(root, filepath.FromSlash(path.Clean("/"+request.URL.Path)))
		info, err := os.Stat(target)

		switch {
		case err == nil && !info.IsDir():
			files.ServeHTTP(writer, request)
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		default:
			page.ServeHTTP(writer, request)
		}
	})
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
