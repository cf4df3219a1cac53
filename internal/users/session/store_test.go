// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroviatech/portal/internal/users/session"
)

func setupTestRedis(t *testing.T) (*session.RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return session.NewRedisBackend(client, time.Hour), mr
}

// exerciseStore runs the shared contract against any Store implementation.
func exerciseStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	// 1. Absent key
	_, err := store.Get(ctx, "auth_token")
	assert.True(t, errors.Is(err, session.ErrKeyNotFound))

	// 2. Write then read
	require.NoError(t, store.Set(ctx, "auth_token", "tok-1"))
	require.NoError(t, store.Set(ctx, "agroviatech_user", `{"id":"1"}`))

	value, err := store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", value)

	// 3. Overwrite
	require.NoError(t, store.Set(ctx, "auth_token", "tok-2"))
	value, err = store.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", value)

	// 4. Delete both, including an unknown key
	require.NoError(t, store.Delete(ctx, "auth_token", "agroviatech_user", "missing"))
	_, err = store.Get(ctx, "auth_token")
	assert.True(t, errors.Is(err, session.ErrKeyNotFound))
	_, err = store.Get(ctx, "agroviatech_user")
	assert.True(t, errors.Is(err, session.ErrKeyNotFound))

	// 5. Deleting nothing is a no-op
	assert.NoError(t, store.Delete(ctx))
}

/*
TestMemoryStore_Contract runs the Store contract against the in-memory store.
*/
func TestMemoryStore_Contract(t *testing.T) {
	exerciseStore(t, session.NewMemoryStore())
}

/*
TestRedisStore_Contract runs the Store contract against miniredis.
*/
func TestRedisStore_Contract(t *testing.T) {
	backend, _ := setupTestRedis(t)
	exerciseStore(t, backend.Scope("sid-1"))
}

/*
TestRedisStore_KeyLayoutAndTTL checks the key namespace and expiry.
*/
func TestRedisStore_KeyLayoutAndTTL(t *testing.T) {
	backend, mr := setupTestRedis(t)
	store := backend.Scope("sid-42")

	require.NoError(t, store.Set(context.Background(), "auth_token", "tok"))

	raw, err := mr.Get("agrovia:session:sid-42:auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok", raw)
	assert.Equal(t, time.Hour, mr.TTL("agrovia:session:sid-42:auth_token"))

	// Expire the key and check it reads as absent.
	mr.FastForward(2 * time.Hour)
	_, err = store.Get(context.Background(), "auth_token")
	assert.True(t, errors.Is(err, session.ErrKeyNotFound))
}

/*
TestBackends_ScopeIsolation verifies that two sessions never see each other's keys.
*/
func TestBackends_ScopeIsolation(t *testing.T) {
	redisBackend, _ := setupTestRedis(t)

	backends := map[string]session.Backend{
		"memory": session.NewMemoryBackend(),
		"redis":  redisBackend,
	}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := backend.Scope("a")
			second := backend.Scope("b")

			require.NoError(t, first.Set(ctx, "auth_token", "tok-a"))

			_, err := second.Get(ctx, "auth_token")
			assert.True(t, errors.Is(err, session.ErrKeyNotFound))

			again, err := backend.Scope("a").Get(ctx, "auth_token")
			require.NoError(t, err)
			assert.Equal(t, "tok-a", again)
		})
	}
}

/*
TestRedisStore_Unavailable surfaces backend failures as errors, not as missing keys.
*/
func TestRedisStore_Unavailable(t *testing.T) {
	backend, mr := setupTestRedis(t)
	mr.Close()

	_, err := backend.Scope("sid").Get(context.Background(), "auth_token")
	require.Error(t, err)
	assert.False(t, errors.Is(err, session.ErrKeyNotFound))
}
