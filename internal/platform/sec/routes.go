// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package sec

import "strings"

// # Route Permission Table

// rolePermissions maps each role to the route prefixes it may open.
// The table is fixed at build time.
var rolePermissions = map[UserRole][]string{
	RoleAdmin: {
		"/admin/dashboard",
		"/admin/users",
		"/admin/parcels",
		"/admin/statistics",
		"/admin/news",
		"/admin/settings",
		"/admin/demandes-agriculteurs",
	},
	RoleAgriculteur: {
		"/agriculteur/dashboard",
		"/agriculteur/parcels",
		"/agriculteur/harvests",
		"/agriculteur/alerts",
		"/agriculteur/statistics",
		"/agriculteur/profile",
		"/agriculteur/settings",
	},
	RoleVisiteur: {
		"/visitor/dashboard",
		"/visitor/actualites",
		"/visitor/apprendre",
		"/visitor/carte",
		"/visitor/demo-ia",
	},
}

// roleLandingRoutes is the default destination after login for each role.
var roleLandingRoutes = map[UserRole]string{
	RoleAdmin:       "/admin/dashboard",
	RoleAgriculteur: "/agriculteur/dashboard",
	RoleVisiteur:    "/visitor/dashboard",
}

// publicRoutes are reachable without a session.
var publicRoutes = []string{"/", "/login", "/register", "/forgot-password"}

// LoginRoute is where anonymous callers are sent when a guarded route is hit.
const LoginRoute = "/login"

// CanAccessRoute reports whether path starts with one of role's allowed prefixes.
// Unknown roles can access nothing.
func CanAccessRoute(role UserRole, path string) bool {
	for _, prefix := range rolePermissions[role] {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// LandingRoute returns the role's default route, or "/" for unknown roles.
func LandingRoute(role UserRole) string {
	if route, ok := roleLandingRoutes[role]; ok {
		return route
	}
	return "/"
}

// AllowedRoutes returns a copy of the prefixes granted to role.
func AllowedRoutes(role UserRole) []string {
	routes := rolePermissions[role]
	out := make([]string, len(routes))
	copy(out, routes)
	return out
}

// IsPublicRoute reports whether path is exactly one of the public routes.
func IsPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}
	return false
}

// PublicRoutes returns a copy of the public route list.
func PublicRoutes() []string {
	out := make([]string, len(publicRoutes))
	copy(out, publicRoutes)
	return out
}
