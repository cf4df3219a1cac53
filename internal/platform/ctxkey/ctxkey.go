// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

// Package ctxkey defines the typed context keys read and written by ctxutil.
// Only ctxutil should import it.
package ctxkey

type key string

const (
	// KeyRequestID holds the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser holds the [sec.AuthClaims] of the caller, from a Bearer token
	// or from the signed-in cookie session.
	KeyUser key = "user"

	// KeySessionID holds the client session id from the agrovia_sid cookie.
	KeySessionID key = "session_id"

	// KeyLogger holds the per-request [*log/slog.Logger].
	KeyLogger key = "logger"
)
