// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"time"

	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/pkg/pagination"
)

// # Directory Contract

/*
UserDirectory is the single owner of user records.

Description: Implementations must normalize emails before lookups and make
Create atomic with respect to email uniqueness, so two concurrent
registrations with the same address cannot both succeed. Every returned
*User is a copy the caller may freely mutate.

Implementations:
  - [MemoryUserDirectory]: process-local, used for development and demos.
  - [PostgresUserDirectory]: users.account table.
*/
type UserDirectory interface {
	// FindByID returns [ErrUserNotFound] when no record matches.
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail matches case-insensitively and returns [ErrUserNotFound] when absent.
	FindByEmail(context context.Context, email string) (*User, error)

	// Create inserts a new record and returns [ErrEmailAlreadyUsed] on a duplicate email.
	Create(context context.Context, user *User) error

	// Update persists the profile fields (nom, prenom, telephone, adresse, region)
	// and stamps UpdatedAt with at.
	Update(context context.Context, user *User, at time.Time) error

	// SetActive enables or disables an account.
	SetActive(context context.Context, id string, active bool, at time.Time) error

	// UpdateRole changes the role of a user and returns the updated record.
	UpdateRole(context context.Context, id string, role sec.UserRole, at time.Time) (*User, error)

	// TouchLogin records the time of a successful login.
	TouchLogin(context context.Context, id string, at time.Time) error

	// List returns a page of users ordered by creation time with the total count.
	List(context context.Context, params pagination.Params) ([]*User, int, error)
}
