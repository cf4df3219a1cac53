// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/users/session"
)

/*
CurrentProfile returns the profile persisted for a client session.

Description: Sessions that never signed in, or whose profile slot was
cleared by logout, get the anonymous [DefaultVisitor]. A slot holding
garbage is treated the same way.

Returns:
  - *User: The persisted profile or a copy of DefaultVisitor
  - error: Store failures other than a missing key
*/
func CurrentProfile(ctx context.Context, store session.Store) (*User, error) {
	raw, err := store.Get(ctx, constants.StorageKeyProfile)
	if err != nil {
		if errors.Is(err, session.ErrKeyNotFound) {
			return DefaultVisitor.Clone(), nil
		}
		return nil, fmt.Errorf("auth_current_profile_read_failed: %w", err)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		return DefaultVisitor.Clone(), nil
	}
	return &user, nil
}
