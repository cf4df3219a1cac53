// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

/*
Package session implements the durable key-value slots that survive a client
session: the serialized session token and the cached user profile.

# Architecture

A [Store] is scoped to exactly one client session. A [Backend] hands out those
scoped stores, so the memory and Redis flavours can be swapped by configuration
without the session manager knowing where its keys live.
*/
package session

import (
	"context"

	"github.com/agroviatech/portal/internal/platform/apperr"
)

// ErrKeyNotFound is returned by [Store.Get] when the key was never written,
// was deleted, or expired.
var ErrKeyNotFound = apperr.NotFound("Session key")

// # Contracts

// Store is a single client session's persisted key-value slot.
type Store interface {

	/*
		Get returns the value stored under key.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - string: Stored value
		  - error: ErrKeyNotFound or backend failures
	*/
	Get(context context.Context, key string) (string, error)

	/*
		Set writes value under key, replacing any previous value.

		Parameters:
		  - context: context.Context
		  - key: string
		  - value: string

		Returns:
		  - error: Backend failures
	*/
	Set(context context.Context, key, value string) error

	/*
		Delete removes the given keys. Missing keys are ignored.

		Parameters:
		  - context: context.Context
		  - keys: ...string

		Returns:
		  - error: Backend failures
	*/
	Delete(context context.Context, keys ...string) error
}

// Backend hands out stores scoped to a client session identifier.
type Backend interface {
	Scope(sessionID string) Store
}

// Forgetter is implemented by backends that keep per-session state in process
// memory and must release it when the session is evicted.
type Forgetter interface {
	Forget(sessionID string)
}
