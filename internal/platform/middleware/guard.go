// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/agroviatech/portal/internal/platform/ctxutil"
	"github.com/agroviatech/portal/internal/platform/sec"
)

// # Route Guarding

// RoleResolver returns the role of the client behind request and whether it
// is signed in at all.
type RoleResolver func(request *http.Request) (sec.UserRole, bool)

// RouteGuard enforces the route permission table on page navigations.
//
// # Flow
//  1. Public routes always pass.
//  2. Anonymous clients are redirected to the login page.
//  3. Signed-in clients outside their allowed prefixes are redirected to
//     their role's landing route.
func RouteGuard(resolve RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			path := request.URL.Path
			if sec.IsPublicRoute(path) {
				next.ServeHTTP(writer, request)
				return
			}

			role, authenticated := resolve(request)
			if !authenticated {
				http.Redirect(writer, request, sec.LoginRoute, http.StatusFound)
				return
			}

			if !sec.CanAccessRoute(role, path) {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "route_guard_redirect",
					slog.String("role", string(role)),
					slog.String("path", path),
				)
				http.Redirect(writer, request, sec.LandingRoute(role), http.StatusFound)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
