// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/agroviatech/portal/internal/platform/metrics"
)

// ErrCircuitOpen is returned while the breaker rejects publishes.
var ErrCircuitOpen = gobreaker.ErrOpenState

// BreakerConfig tunes [BreakingPublisher].
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig trips after half of at least five publishes failed and
// probes the broker again after thirty seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// BreakingPublisher stops calling an unhealthy broker for a while, so that a
// Kafka outage costs every login one fast error instead of a write timeout.
type BreakingPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakingPublisher wraps next with a circuit breaker.
func NewBreakingPublisher(next Publisher, cfg BreakerConfig, logger *slog.Logger) *BreakingPublisher {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("event_breaker_state_changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.EventBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}

	metrics.EventBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakingPublisher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Publish implements [Publisher].
func (publisher *BreakingPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	_, err := publisher.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, publisher.next.Publish(ctx, topic, event)
	})
	return err
}

// State reports the breaker state name (closed, half-open or open).
func (publisher *BreakingPublisher) State() string {
	return publisher.breaker.State().String()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
