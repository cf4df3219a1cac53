// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Platform administrator: user management and farmer request review
	RoleAdmin UserRole = "ADMIN"

	// Verified farmer with access to parcels, harvests and alerts
	RoleAgriculteur UserRole = "AGRICULTEUR"

	// Default role for self-registered accounts
	RoleVisiteur UserRole = "VISITEUR"
)

// Roles lists every known role.
var Roles = []UserRole{RoleAdmin, RoleAgriculteur, RoleVisiteur}

// # Role Checks

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgriculteur, RoleVisiteur:
		return true
	default:
		return false
	}
}

// SelfRegistrable reports whether an account may be created with this role
// through public registration. ADMIN accounts are provisioned only.
func (r UserRole) SelfRegistrable() bool {
	return r == RoleAgriculteur || r == RoleVisiteur
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}
