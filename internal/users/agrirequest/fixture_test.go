// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agroviatech/portal/internal/platform/events"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/users/agrirequest"
	"github.com/agroviatech/portal/internal/users/auth"
	"github.com/agroviatech/portal/internal/users/session"
)

const demoPassword = "admin123"

// fixture wires the workflow on memory stores next to a seeded user
// directory and a session registry.
type fixture struct {
	now       time.Time
	directory *auth.MemoryUserDirectory
	tokens    *sec.TokenService
	backend   *session.MemoryBackend
	registry  *auth.SessionRegistry
	store     *agrirequest.MemoryStore
	service   *agrirequest.Service
	promoter  *agrirequest.AutoPromoter
	recorder  *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		directory: auth.NewMemoryUserDirectory(),
		backend:   session.NewMemoryBackend(),
		store:     agrirequest.NewMemoryStore(),
		recorder:  &events.Recorder{},
	}
	clock := func() time.Time { return f.now }
	hasher := sec.NewBcryptHasher(bcrypt.MinCost)

	tokens, err := sec.NewTokenService("fixture-secret", "agroviatech.test", 24*time.Hour)
	require.NoError(t, err)
	f.tokens = tokens.WithClock(clock)

	_, err = auth.SeedDemoUsers(context.Background(), f.directory, hasher, demoPassword)
	require.NoError(t, err)

	verifier, err := auth.NewCredentialVerifier(f.directory, hasher)
	require.NoError(t, err)

	f.registry = auth.NewSessionRegistry(auth.Dependencies{
		Directory: f.directory,
		Verifier:  verifier,
		Hasher:    hasher,
		Tokens:    f.tokens,
		Publisher: f.recorder,
		Now:       clock,
	}, f.backend, time.Hour)

	f.service = agrirequest.NewService(f.store, f.recorder, nil).WithClock(clock)
	f.promoter = agrirequest.NewAutoPromoter(agrirequest.RegistrySessions(f.registry), nil)
	t.Cleanup(f.service.Subscribe(f.promoter.OnTransition))

	return f
}

// session returns the Manager of sessionID.
func (f *fixture) session(sessionID string) *auth.Manager {
	return f.registry.Get(context.Background(), sessionID)
}

func (f *fixture) login(t *testing.T, sessionID, email string) *auth.Manager {
	t.Helper()
	manager := f.session(sessionID)
	_, err := manager.Login(context.Background(), auth.LoginInput{Email: email, Password: demoPassword})
	require.NoError(t, err)
	return manager
}

// tick advances the clock so successive requests order deterministically.
func (f *fixture) tick() {
	f.now = f.now.Add(time.Minute)
}

func validInput() agrirequest.CreateInput {
	return agrirequest.CreateInput{
		FirstName:     "Awa",
		LastName:      "Ba",
		Location:      "Thiès",
		Phone:         "+221 77 123 45 67",
		Experience:    agrirequest.ExperienceOptions[1],
		CultureType:   agrirequest.CultureTypeOptions[2],
		Justification: "Je cultive des oignons depuis deux saisons.",
	}
}
