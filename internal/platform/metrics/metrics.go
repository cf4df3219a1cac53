// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

// Package metrics exposes Prometheus collectors for HTTP traffic and for the
// identity domain (authentication outcomes, role changes, farmer requests).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # HTTP Collectors

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// # Domain Collectors

var (
	// AuthOperations counts session manager operations by name and outcome.
	AuthOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrovia_auth_operations_total",
			Help: "Session manager operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// RoleChanges counts role mutations by resulting role and trigger.
	RoleChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrovia_role_changes_total",
			Help: "User role changes by new role and trigger",
		},
		[]string{"role", "trigger"},
	)

	// AgriRequestTransitions counts farmer request status changes.
	AgriRequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrovia_agri_request_transitions_total",
			Help: "Farmer request status transitions by resulting status",
		},
		[]string{"status"},
	)

	// EventBreakerState is 0 while closed, 1 half-open and 2 open.
	EventBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agrovia_event_breaker_state",
			Help: "Circuit breaker state of the domain event publisher",
		},
		[]string{"name"},
	)

	// ActiveSessions is the number of session managers held in memory.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agrovia_active_sessions",
			Help: "Client sessions currently tracked by the registry",
		},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Outcome maps an error to its outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// # Middleware

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, latency and in-flight gauge. The path
// label is the chi route pattern to keep cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(wrapped, request)

		routePattern := "unknown"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil && routeContext.RoutePattern() != "" {
			routePattern = routeContext.RoutePattern()
		}

		status := strconv.Itoa(wrapped.status)
		httpRequestsTotal.WithLabelValues(request.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(request.Method, routePattern, status).Observe(time.Since(startTime).Seconds())
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
