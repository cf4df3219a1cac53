// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest

import (
	"context"
	"time"

	"github.com/agroviatech/portal/pkg/pagination"
)

// Store owns request records.
//
// # Atomicity
//
// Create must refuse a second pending request for the same user even under
// concurrent calls, and Transition must be a compare-and-set on the status so
// two administrators cannot both resolve the same request.
type Store interface {
	// Create inserts a pending request or returns [ErrRequestAlreadyPending].
	Create(context context.Context, request *Request) error

	// FindByID returns [ErrRequestNotFound] when absent.
	FindByID(context context.Context, id string) (*Request, error)

	// LatestForUser returns the most recent request of userID, or [ErrRequestNotFound].
	LatestForUser(context context.Context, userID string) (*Request, error)

	// Transition moves id from one status to another. It returns
	// [ErrRequestNotFound] or [ErrInvalidTransition] when the current status is not from.
	Transition(context context.Context, id string, from, to Status, at time.Time) (*Request, error)

	// List returns a page of requests, newest first, with the filtered total.
	List(context context.Context, filter ListFilter, params pagination.Params) ([]*Request, int, error)

	// CountByStatus returns the number of requests per status.
	CountByStatus(context context.Context) (map[Status]int, error)
}
