// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

/*
Package requestutil extracts what handlers need from an HTTP request: the
decoded body, URL parameters, the authenticated user and the client session
the request belongs to.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroviatech/portal/internal/platform/apperr"
	"github.com/agroviatech/portal/internal/platform/constants"
	"github.com/agroviatech/portal/internal/platform/ctxutil"
	"github.com/agroviatech/portal/internal/platform/sec"
	"github.com/agroviatech/portal/internal/platform/validate"
)

// ErrSessionUnbound means the session cookie middleware did not run for this
// route. It is a wiring bug, never a client error.
var ErrSessionUnbound = apperr.Internal(errors.New("request carries no client session id"))

/*
DecodeJSON reads at most [constants.MaxRequestBodyBytes] of the body and
decodes it into target.

Returns:
  - error: validate.ErrInvalidJSON if the body is malformed or too large
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	body := http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// ID retrieves a named URL parameter from the request.
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredClaims returns the claims of the authenticated user.

Returns:
  - error: apperr.Unauthorized if neither a Bearer token nor a signed-in
    cookie session identified the caller
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentification requise")
	}
	return claims, nil
}

// RequiredUserID returns the id of the authenticated user.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// RequiredSessionID returns the client session id bound by the session cookie
// middleware, or [ErrSessionUnbound].
func RequiredSessionID(request *http.Request) (string, error) {
	sessionID := ctxutil.GetSessionID(request.Context())
	if sessionID == "" {
		return "", ErrSessionUnbound
	}
	return sessionID, nil
}
