// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

/*
Package auth implements the user identity and session management layer.

It defines the user entity, the directory that owns user records, the
credential verifier, and the per-client session [Manager] that drives login,
registration, logout, profile edits and role changes.

# Architecture

The [UserDirectory] is the only writer of user records. Managers hold a
read/write-through view of the signed-in user and never mutate records held
by the directory directly; they always go through the directory contract.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/agroviatech/portal/internal/platform/sec"
)

// # Domain Entities

// User represents an account of the AgroviaTech portal.
type User struct {
	ID           string       `json:"id"`
	Nom          string       `json:"nom"`
	Prenom       string       `json:"prenom"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	Telephone    string       `json:"telephone,omitempty"`
	Adresse      string       `json:"adresse,omitempty"`
	Region       string       `json:"region,omitempty"`
	EstActif     bool         `json:"est_actif"`
	DernierLogin *time.Time   `json:"dernier_login,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Clone returns a deep copy so callers never share a record with the directory.
func (user *User) Clone() *User {
	if user == nil {
		return nil
	}
	clone := *user
	if user.DernierLogin != nil {
		lastLogin := *user.DernierLogin
		clone.DernierLogin = &lastLogin
	}
	return &clone
}

// FullName returns "Prenom Nom".
func (user *User) FullName() string {
	return strings.TrimSpace(user.Prenom + " " + user.Nom)
}

// # Normalization

var emailCaser = cases.Lower(language.Und)

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return emailCaser.String(strings.TrimSpace(email))
}

// normalizeName trims and NFC-composes a personal name, so "Aminata" typed
// with decomposed accents compares equal to the precomposed form.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldNom       = "nom"
	FieldPrenom    = "prenom"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldTelephone = "telephone"
	FieldAdresse   = "adresse"
	FieldRegion    = "region"
	FieldEstActif  = "est_actif"
	FieldPath      = "path"
)
