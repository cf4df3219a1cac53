// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agroviatech/portal/internal/platform/events"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/auth"
	"github.com/agroviatech/portal/internal/users/session"
)

const demoPassword = "admin123"

// fixture wires a seeded memory directory, a controllable clock and a memory
// session backend.
type fixture struct {
	now          time.Time
	directory    *auth.MemoryUserDirectory
	hasher       *sec.BcryptHasher
	tokens       *sec.TokenService
	backend      *session.MemoryBackend
	recorder     *events.Recorder
	dependencies auth.Dependencies
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		directory: auth.NewMemoryUserDirectory(),
		hasher:    sec.NewBcryptHasher(bcrypt.MinCost),
		backend:   session.NewMemoryBackend(),
		recorder:  &events.Recorder{},
	}
	clock := func() time.Time { return f.now }

	tokens, err := sec.NewTokenService("fixture-secret", "agroviatech.test", 24*time.Hour)
	require.NoError(t, err)
	f.tokens = tokens.WithClock(clock)

	_, err = auth.SeedDemoUsers(context.Background(), f.directory, f.hasher, demoPassword)
	require.NoError(t, err)

	verifier, err := auth.NewCredentialVerifier(f.directory, f.hasher)
	require.NoError(t, err)

	f.dependencies = auth.Dependencies{
		Directory: f.directory,
		Verifier:  verifier,
		Hasher:    f.hasher,
		Tokens:    f.tokens,
		Publisher: f.recorder,
		Now:       clock,
	}
	return f
}

// manager returns an initialized Manager bound to sessionID.
func (f *fixture) manager(sessionID string) *auth.Manager {
	manager := auth.NewManager(f.dependencies, f.backend.Scope(sessionID))
	manager.Init(context.Background())
	return manager
}

func (f *fixture) login(t *testing.T, manager *auth.Manager, email string) *auth.AuthResponse {
	t.Helper()
	response, err := manager.Login(context.Background(), auth.LoginInput{Email: email, Password: demoPassword})
	require.NoError(t, err)
	return response
}
