// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package session

import (
	"context"
	"sync"
)

// # In-Memory Store

// MemoryStore is a process-local [Store]. The zero value is not usable; call
// [NewMemoryStore].
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements [Store].
func (store *MemoryStore) Get(context context.Context, key string) (string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set implements [Store].
func (store *MemoryStore) Set(context context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.values[key] = value
	return nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(context context.Context, keys ...string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, key := range keys {
		delete(store.values, key)
	}
	return nil
}

// # In-Memory Backend

// MemoryBackend keeps one [MemoryStore] per client session.
type MemoryBackend struct {
	mu     sync.Mutex
	scopes map[string]*MemoryStore
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{scopes: make(map[string]*MemoryStore)}
}

// Scope implements [Backend]. The same session id always yields the same store.
func (backend *MemoryBackend) Scope(sessionID string) Store {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	store, ok := backend.scopes[sessionID]
	if !ok {
		store = NewMemoryStore()
		backend.scopes[sessionID] = store
	}
	return store
}

// Forget drops the store of a session that will not come back.
func (backend *MemoryBackend) Forget(sessionID string) {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	delete(backend.scopes, sessionID)
}
