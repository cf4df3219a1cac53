// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agroviatech/portal/pkg/pagination"
	"github.com/agroviatech/portal/pkg/slice"
)

// MemoryStore keeps requests in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*Request
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string]*Request)}
}

// Create checks for a pending request and inserts under one write lock.
func (store *MemoryStore) Create(context context.Context, request *Request) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.requests {
		if existing.UserID == request.UserID && existing.Status == StatusPending {
			return ErrRequestAlreadyPending
		}
	}

	store.requests[request.ID] = request.Clone()
	return nil
}

// FindByID returns a copy of the request.
func (store *MemoryStore) FindByID(context context.Context, id string) (*Request, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	request, ok := store.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return request.Clone(), nil
}

// LatestForUser returns the newest request of userID.
func (store *MemoryStore) LatestForUser(context context.Context, userID string) (*Request, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var latest *Request
	for _, request := range store.requests {
		if request.UserID != userID {
			continue
		}
		if latest == nil || newer(request, latest) {
			latest = request
		}
	}

	if latest == nil {
		return nil, ErrRequestNotFound
	}
	return latest.Clone(), nil
}

// Transition is a compare-and-set on the status.
func (store *MemoryStore) Transition(context context.Context, id string, from, to Status, at time.Time) (*Request, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	request, ok := store.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	if request.Status != from {
		return nil, ErrInvalidTransition
	}

	request.Status = to
	request.UpdatedAt = at
	return request.Clone(), nil
}

// List filters, sorts newest first and pages.
func (store *MemoryStore) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Request, int, error) {
	store.mu.RLock()
	all := make([]*Request, 0, len(store.requests))
	for _, request := range store.requests {
		all = append(all, request.Clone())
	}
	store.mu.RUnlock()

	matching := slice.Filter(all, func(request *Request) bool {
		return (filter.Status == "" || request.Status == filter.Status) &&
			(filter.UserID == "" || request.UserID == filter.UserID)
	})

	sort.Slice(matching, func(i, j int) bool { return newer(matching[i], matching[j]) })

	return pagination.Window(matching, params), len(matching), nil
}

// CountByStatus tallies requests per status.
func (store *MemoryStore) CountByStatus(context context.Context) (map[Status]int, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	all := make([]*Request, 0, len(store.requests))
	for _, request := range store.requests {
		all = append(all, request)
	}
	return slice.CountBy(all, func(request *Request) Status { return request.Status }), nil
}

// newer orders by creation time, then id, both descending.
func newer(a, b *Request) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
