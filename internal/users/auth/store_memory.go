// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/pkg/pagination"
)

// MemoryUserDirectory keeps users in process memory, indexed by id and by
// normalized email.
type MemoryUserDirectory struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
}

// NewMemoryUserDirectory creates an empty directory.
func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

// FindByID returns a copy of the user with the given id.
func (directory *MemoryUserDirectory) FindByID(context context.Context, id string) (*User, error) {
	directory.mu.RLock()
	defer directory.mu.RUnlock()

	user, ok := directory.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.Clone(), nil
}

// FindByEmail returns a copy of the user registered under email.
func (directory *MemoryUserDirectory) FindByEmail(context context.Context, email string) (*User, error) {
	directory.mu.RLock()
	defer directory.mu.RUnlock()

	id, ok := directory.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return directory.byID[id].Clone(), nil
}

// Create stores a copy of user. The email check and the insert happen under
// the same write lock.
func (directory *MemoryUserDirectory) Create(context context.Context, user *User) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	email := NormalizeEmail(user.Email)
	if _, exists := directory.byEmail[email]; exists {
		return ErrEmailAlreadyUsed
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	user.Email = email

	directory.byID[user.ID] = user.Clone()
	directory.byEmail[email] = user.ID
	return nil
}

// Update overwrites the mutable profile fields. Email, role, password and
// account status are left untouched.
func (directory *MemoryUserDirectory) Update(context context.Context, user *User, at time.Time) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	stored, ok := directory.byID[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	stored.Nom = user.Nom
	stored.Prenom = user.Prenom
	stored.Telephone = user.Telephone
	stored.Adresse = user.Adresse
	stored.Region = user.Region
	stored.UpdatedAt = at
	user.UpdatedAt = at
	return nil
}

// SetActive flips EstActif.
func (directory *MemoryUserDirectory) SetActive(context context.Context, id string, active bool, at time.Time) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	stored, ok := directory.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	stored.EstActif = active
	stored.UpdatedAt = at
	return nil
}

// UpdateRole sets the role of id and returns the updated copy.
func (directory *MemoryUserDirectory) UpdateRole(context context.Context, id string, role sec.UserRole, at time.Time) (*User, error) {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	stored, ok := directory.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	stored.Role = role
	stored.UpdatedAt = at
	return stored.Clone(), nil
}

// TouchLogin sets DernierLogin.
func (directory *MemoryUserDirectory) TouchLogin(context context.Context, id string, at time.Time) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	stored, ok := directory.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	stored.DernierLogin = &at
	return nil
}

// List pages through users ordered by creation time, then id.
func (directory *MemoryUserDirectory) List(context context.Context, params pagination.Params) ([]*User, int, error) {
	directory.mu.RLock()
	users := make([]*User, 0, len(directory.byID))
	for _, user := range directory.byID {
		users = append(users, user.Clone())
	}
	directory.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return pagination.Window(users, params), len(users), nil
}
