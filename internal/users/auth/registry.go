// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/metrics"
	"github.com/agroviatech/portal/internal/users/session"
	"github.com/agroviatech/portal/pkg/uuid"
)

// SessionRegistry maps client session identifiers to their [Manager].
//
// # Lifecycle
//
// A Manager is created and initialized from its persisted slots the first
// time its session id is seen, and evicted after idleTTL without use. With the
// Redis backend the persisted token outlives eviction and a later request
// rebuilds the Manager from it; the memory backend forgets the slots too.
type SessionRegistry struct {
	dependencies Dependencies
	backend      session.Backend
	idleTTL      time.Duration
	now          func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	manager  *Manager
	once     sync.Once
	lastSeen time.Time
}

// NewSessionRegistry creates an empty registry. A non-positive idleTTL falls
// back to [constants.DefaultSessionIdleTTL].
func NewSessionRegistry(dependencies Dependencies, backend session.Backend, idleTTL time.Duration) *SessionRegistry {
	if idleTTL <= 0 {
		idleTTL = constants.DefaultSessionIdleTTL
	}
	now := dependencies.Now
	if now == nil {
		now = time.Now
	}
	if dependencies.Logger == nil {
		dependencies.Logger = slog.Default()
	}

	return &SessionRegistry{
		dependencies: dependencies,
		backend:      backend,
		idleTTL:      idleTTL,
		now:          now,
		entries:      make(map[string]*registryEntry),
	}
}

/*
Get returns the Manager of sessionID, creating and initializing it on first
use. Concurrent callers for the same new session share one initialization.
*/
func (registry *SessionRegistry) Get(ctx context.Context, sessionID string) *Manager {
	registry.mu.Lock()
	entry, ok := registry.entries[sessionID]
	if !ok {
		entry = &registryEntry{
			manager: NewManager(registry.dependencies, registry.backend.Scope(sessionID)),
		}
		registry.entries[sessionID] = entry
		metrics.ActiveSessions.Set(float64(len(registry.entries)))
	}
	entry.lastSeen = registry.now()
	registry.mu.Unlock()

	entry.once.Do(func() { entry.manager.Init(ctx) })
	return entry.manager
}

/*
Rotate moves the Manager of sessionID, with its persisted slots, under a
newly generated identifier and returns that identifier. sessionID is left
unknown: a later request carrying it starts an anonymous session.
*/
func (registry *SessionRegistry) Rotate(ctx context.Context, sessionID string) (string, error) {
	manager := registry.Get(ctx, sessionID)
	rotated := uuid.NewSessionID()

	if err := manager.rebind(ctx, registry.backend.Scope(rotated)); err != nil {
		return "", err
	}

	entry := &registryEntry{manager: manager, lastSeen: registry.now()}
	entry.once.Do(func() {})

	registry.mu.Lock()
	if previous, ok := registry.entries[sessionID]; ok && previous.manager == manager {
		delete(registry.entries, sessionID)
	}
	registry.entries[rotated] = entry
	metrics.ActiveSessions.Set(float64(len(registry.entries)))
	registry.mu.Unlock()

	if forgetter, ok := registry.backend.(session.Forgetter); ok {
		forgetter.Forget(sessionID)
	}
	return rotated, nil
}

// ForUser returns every tracked Manager currently signed in as userID.
func (registry *SessionRegistry) ForUser(userID string) []*Manager {
	registry.mu.Lock()
	managers := make([]*Manager, 0, 1)
	for _, entry := range registry.entries {
		managers = append(managers, entry.manager)
	}
	registry.mu.Unlock()

	matching := managers[:0]
	for _, manager := range managers {
		if manager.UserID() == userID {
			matching = append(matching, manager)
		}
	}
	return matching
}

// Len returns the number of tracked sessions.
func (registry *SessionRegistry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.entries)
}

// Evict drops the Managers idle since before now minus idleTTL and reports how
// many were removed.
func (registry *SessionRegistry) Evict(now time.Time) int {
	cutoff := now.Add(-registry.idleTTL)

	registry.mu.Lock()
	var evicted []string
	for sessionID, entry := range registry.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(registry.entries, sessionID)
			evicted = append(evicted, sessionID)
		}
	}
	metrics.ActiveSessions.Set(float64(len(registry.entries)))
	registry.mu.Unlock()

	if forgetter, ok := registry.backend.(session.Forgetter); ok {
		for _, sessionID := range evicted {
			forgetter.Forget(sessionID)
		}
	}
	return len(evicted)
}

// Run evicts idle sessions every interval until ctx is cancelled.
func (registry *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = constants.SessionCleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := registry.Evict(registry.now()); evicted > 0 {
				registry.dependencies.Logger.InfoContext(ctx, "auth_sessions_evicted",
					slog.Int("count", evicted),
					slog.Int("remaining", registry.Len()),
				)
			}
		}
	}
}
