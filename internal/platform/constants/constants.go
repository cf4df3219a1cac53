// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: token issuer, session cookie and persisted key names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "agrovia-portal"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// MaxRequestBodyBytes caps JSON request bodies. Farmer requests carry the
	// longest text (a justification of up to 2000 characters).
	MaxRequestBodyBytes = 64 << 10

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// AuthRateLimitRPS throttles the credential endpoints per IP.
	AuthRateLimitRPS = 2.0

	// AuthRateLimitBurst is the burst allowed on the credential endpoints.
	AuthRateLimitBurst = 30

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "agroviatech.com"

	// DefaultTokenTTL is how long an issued session token stays valid.
	DefaultTokenTTL = 24 * time.Hour

	// SessionCookieName is the cookie carrying the client session identifier.
	SessionCookieName = "agrovia_sid"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"

	// DefaultSessionIdleTTL is how long an unused session manager is kept in memory.
	DefaultSessionIdleTTL = 24 * time.Hour

	// SessionCleanupInterval is how often idle session managers are evicted.
	SessionCleanupInterval = 5 * time.Minute
)

// # Persisted Session Keys

const (
	// StorageKeyToken holds the serialized session token.
	StorageKeyToken = "auth_token"

	// StorageKeyProfile holds the serialized current user profile.
	StorageKeyProfile = "agroviatech_user"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	ContentTypeJSON     = "application/json; charset=utf-8"
	AuthorizationBearer = "bearer"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixSession namespaces the per-client persisted session slots.
	RedisPrefixSession = "agrovia:session:"
)

// # Kafka Topics

const (
	TopicUserEvents    = "agrovia.user.events"
	TopicRequestEvents = "agrovia.agri_request.events"
)
