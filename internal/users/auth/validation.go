// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/platform/validate"
	"github.com/agroviatech/portal/pkg/pointer"
	"github.com/agroviatech/portal/pkg/slice"
	"github.com/agroviatech/portal/pkg/uuid"
)

// newUserID returns a time-sortable identifier for a new account.
func newUserID() string {
	return uuid.New()
}

func validateRegistration(input RegisterInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldNom, input.Nom).
		MaxLen(FieldNom, input.Nom, NameMaxLength).
		Required(FieldPrenom, input.Prenom).
		MaxLen(FieldPrenom, input.Prenom, NameMaxLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		Phone(FieldTelephone, input.Telephone).
		OneOf(FieldRole, string(input.Role), roleNames()...)

	return validator.Err()
}

func validateProfileUpdate(update ProfileUpdate) error {
	validator := &validate.Validator{}
	if update.Nom != nil {
		validator.Required(FieldNom, *update.Nom).MaxLen(FieldNom, *update.Nom, NameMaxLength)
	}
	if update.Prenom != nil {
		validator.Required(FieldPrenom, *update.Prenom).MaxLen(FieldPrenom, *update.Prenom, NameMaxLength)
	}
	if update.Telephone != nil {
		validator.Phone(FieldTelephone, *update.Telephone)
	}
	return validator.Err()
}

// mergeProfile copies the non-nil fields of update into user.
func mergeProfile(user *User, update ProfileUpdate) {
	if pointer.Assign(&user.Nom, update.Nom) {
		user.Nom = normalizeName(user.Nom)
	}
	if pointer.Assign(&user.Prenom, update.Prenom) {
		user.Prenom = normalizeName(user.Prenom)
	}
	pointer.Assign(&user.Telephone, update.Telephone)
	pointer.Assign(&user.Adresse, update.Adresse)
	pointer.Assign(&user.Region, update.Region)
}

func roleNames() []string {
	return slice.Map(sec.Roles, sec.UserRole.String)
}
