// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agroviatech/portal/internal/platform/constants"
)

// # Redis Backend

// RedisBackend stores session slots in Redis under
// "agrovia:session:<sessionID>:<key>" with a sliding TTL.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend creates a Redis-backed [Backend]. Keys expire after ttl
// without a write.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

// Scope implements [Backend].
func (backend *RedisBackend) Scope(sessionID string) Store {
	return &RedisStore{
		client: backend.client,
		ttl:    backend.ttl,
		prefix: constants.RedisPrefixSession + sessionID + ":",
	}
}

// RedisStore is a [Store] bound to one session prefix.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

/*
Get retrieves the value stored under key for this session.

Description: Returns ErrKeyNotFound if the key is absent or expired.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: ErrKeyNotFound or connectivity errors
*/
func (store *RedisStore) Get(context context.Context, key string) (string, error) {
	value, err := store.client.Get(context, store.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return value, nil
}

/*
Set writes the value with the backend TTL.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Execution errors
*/
func (store *RedisStore) Set(context context.Context, key, value string) error {
	if err := store.client.Set(context, store.prefix+key, value, store.ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

/*
Delete removes the keys of this session.

Parameters:
  - context: context.Context
  - keys: ...string

Returns:
  - error: Deletion failures
*/
func (store *RedisStore) Delete(context context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = store.prefix + key
	}

	if err := store.client.Del(context, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
