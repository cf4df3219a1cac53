// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package middleware

import (
	"context"
	"net/http"

	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/ctxutil"
	"github.com/agroviatech/portal/pkg/uuid"
)

// # Client Sessions

// SessionCookie binds every request to a client session identifier carried in
// the [constants.SessionCookieName] cookie, issuing a fresh one when the
// cookie is missing or not a UUID.
func SessionCookie(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			sessionID := ""
			if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && uuid.Valid(cookie.Value) {
				sessionID = cookie.Value
			}

			ctx := context.WithValue(request.Context(), secureCookieKey{}, secure)
			if sessionID == "" {
				sessionID = uuid.NewSessionID()
				writeSessionCookie(writer, sessionID, secure)
			}

			ctx = ctxutil.WithSessionID(ctx, sessionID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// SetSessionCookie replaces the client's session identifier, using the
// Secure setting [SessionCookie] was configured with.
func SetSessionCookie(writer http.ResponseWriter, request *http.Request, sessionID string) {
	secure, _ := request.Context().Value(secureCookieKey{}).(bool)
	writeSessionCookie(writer, sessionID, secure)
}

type secureCookieKey struct{}

func writeSessionCookie(writer http.ResponseWriter, sessionID string, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    sessionID,
		Path:     constants.SessionCookiePath,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
