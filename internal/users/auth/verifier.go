// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/agroviatech/portal/internal/platform/sec"
)

// CredentialVerifier checks an email/password pair against the directory.
type CredentialVerifier struct {
	directory UserDirectory
	hasher    sec.PasswordHasher
	dummyHash string
}

// NewCredentialVerifier builds a verifier. A throwaway hash is computed up
// front so unknown emails cost the same bcrypt comparison as known ones.
func NewCredentialVerifier(directory UserDirectory, hasher sec.PasswordHasher) (*CredentialVerifier, error) {
	dummyHash, err := hasher.Hash("agrovia-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("credential_verifier_init_failed: %w", err)
	}

	return &CredentialVerifier{
		directory: directory,
		hasher:    hasher,
		dummyHash: dummyHash,
	}, nil
}

/*
Verify returns the user when the email exists, the account is active and the
password matches its stored hash.

Parameters:
  - context: context.Context
  - email: string (matched case-insensitively)
  - password: string

Returns:
  - *User: The matching account
  - error: ErrInvalidCredentials for every rejection, or directory failures
*/
func (verifier *CredentialVerifier) Verify(context context.Context, email, password string) (*User, error) {
	user, err := verifier.directory.FindByEmail(context, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			verifier.hasher.Compare(verifier.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !verifier.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !user.EstActif {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
