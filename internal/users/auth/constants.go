// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"net/http"

	"github.com/agroviatech/portal/internal/platform/apperr"
	"github.com/agroviatech/portal/internal/platform/sec"
)

// # Authentication Constraints

const (
	// PasswordMinLength is the shortest password accepted at registration.
	PasswordMinLength = 6

	// NameMaxLength bounds nom and prenom.
	NameMaxLength = 100
)

// # Domain Errors

var (
	// ErrInvalidCredentials covers unknown email, wrong password and inactive
	// accounts alike so callers cannot enumerate accounts.
	ErrInvalidCredentials = apperr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email ou mot de passe incorrect")

	// ErrEmailAlreadyUsed is returned when registering an email the directory already holds.
	ErrEmailAlreadyUsed = apperr.New(http.StatusConflict, "EMAIL_ALREADY_USED", "Cet email est déjà utilisé")

	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = apperr.New(http.StatusUnauthorized, "NOT_AUTHENTICATED", "Utilisateur non connecté")

	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = apperr.New(http.StatusForbidden, "FORBIDDEN", "Accès non autorisé")

	// ErrUserNotFound is returned when no directory entry matches the id.
	ErrUserNotFound = apperr.New(http.StatusNotFound, "USER_NOT_FOUND", "Utilisateur non trouvé")

	// ErrRoleNotAllowed is returned when registering with a role reserved to provisioning.
	ErrRoleNotAllowed = apperr.New(http.StatusUnprocessableEntity, "ROLE_NOT_ALLOWED", "Ce rôle ne peut pas être choisi à l'inscription")

	// ErrOperationInProgress is returned when a session already has an operation in flight.
	ErrOperationInProgress = apperr.New(http.StatusConflict, "OPERATION_IN_PROGRESS", "Une opération est déjà en cours")
)

// # Anonymous Profile

// DefaultVisitor is the profile presented when no user profile was persisted.
var DefaultVisitor = User{
	ID:       "visitor-demo",
	Nom:      "Visiteur",
	Prenom:   "Demo",
	Email:    "visiteur@demo.com",
	Role:     sec.RoleVisiteur,
	EstActif: true,
}
