// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/agroviatech/portal/internal/platform/apperr"
	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/ctxutil"
	"github.com/agroviatech/portal/internal/platform/respond"
	"github.com/agroviatech/portal/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// AccountChecker reports the current standing of the account behind a token.
// A token is only honoured while its user exists and is active, and it carries
// the role the directory holds now rather than the one it was issued with.
type AccountChecker interface {
	CurrentRole(ctx context.Context, userID string) (role sec.UserRole, active bool, err error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Reject tokens whose account vanished or was deactivated and adopt the
//     account's current role (when checker is set).
//  5. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier, checker AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			scheme, tokenStr, found := strings.Cut(authHeader, " ")
			if !found || strings.ToLower(scheme) != constants.AuthorizationBearer || tokenStr == "" {
				respond.Error(writer, request, apperr.Unauthorized("Format d'autorisation invalide").WithCode("NOT_AUTHENTICATED"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Session invalide ou expirée").WithCode("NOT_AUTHENTICATED"))
				return
			}

			// ── 4. Account Status ─────────────────────────────────────────────
			if checker != nil {
				role, active, err := checker.CurrentRole(request.Context(), claims.UserID)
				if err != nil {
					respond.Error(writer, request, err)
					return
				}
				if !active {
					respond.Error(writer, request, apperr.Unauthorized("Session invalide ou expirée").WithCode("NOT_AUTHENTICATED"))
					return
				}
				if string(role) != claims.Role {
					current := *claims
					current.Role = string(role)
					claims = &current
				}
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if GetUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Utilisateur non connecté").WithCode("NOT_AUTHENTICATED"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose user holds none of the given roles.
//
// Roles are flat: there is no hierarchy, so ADMIN does not implicitly satisfy
// AGRICULTEUR. It implies [RequireAuth].
func RequireRole(roles ...sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := GetUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Utilisateur non connecté").WithCode("NOT_AUTHENTICATED"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !slices.Contains(roles, sec.UserRole(claims.Role)) {
				respond.Error(writer, request, apperr.Forbidden("Accès non autorisé"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// GetUser retrieves the [*sec.AuthClaims] from the [context.Context], or nil
// for anonymous requests.
func GetUser(ctx context.Context) *sec.AuthClaims {
	return ctxutil.GetAuthUser(ctx)
}
