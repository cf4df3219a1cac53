// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agroviatech/portal/internal/platform/sec"
)

// demoAccounts are the accounts shipped with the dashboard demo.
var demoAccounts = []User{
	{ID: "1", Nom: "Système", Prenom: "Admin", Email: "admin@agroviatech.com", Role: sec.RoleAdmin, Telephone: "+221338654321", Region: "Dakar"},
	{ID: "2", Nom: "Sow", Prenom: "Moussa", Email: "moussa.sow@agroviatech.com", Role: sec.RoleAgriculteur, Telephone: "+221775551234", Adresse: "Parcelle 15, Saint-Louis", Region: "Saint-Louis"},
	{ID: "3", Nom: "Ba", Prenom: "Ibrahim", Email: "ibrahim.ba@agroviatech.com", Role: sec.RoleAgriculteur, Telephone: "+221776662345", Adresse: "Domaine 8, Fatick", Region: "Fatick"},
	{ID: "4", Nom: "Diop", Prenom: "Aminata", Email: "aminata.diop@agroviatech.com", Role: sec.RoleAgriculteur, Telephone: "+221777773456", Adresse: "Ferme 25, Kaolack", Region: "Kaolack"},
	{ID: "5", Nom: "Demo1", Prenom: "Visiteur", Email: "visitor1@agroviatech.com", Role: sec.RoleVisiteur, Region: "Dakar"},
}

/*
SeedDemoUsers inserts the demo accounts, all sharing password. Accounts that
already exist are skipped, so seeding is safe on every start.

Returns:
  - int: Number of accounts created
  - error: Hashing or directory failures
*/
func SeedDemoUsers(ctx context.Context, directory UserDirectory, hasher sec.PasswordHasher, password string) (int, error) {
	passwordHash, err := hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("auth_seed_hash_failed: %w", err)
	}

	created := 0
	now := time.Now().UTC()
	for _, account := range demoAccounts {
		if _, err := directory.FindByEmail(ctx, account.Email); err == nil {
			continue
		}

		user := account
		user.PasswordHash = passwordHash
		user.EstActif = true
		user.CreatedAt = now
		user.UpdatedAt = now

		if err := directory.Create(ctx, &user); err != nil {
			if errors.Is(err, ErrEmailAlreadyUsed) {
				continue
			}
			return created, fmt.Errorf("auth_seed_create_failed: %w", err)
		}
		created++
	}

	return created, nil
}
