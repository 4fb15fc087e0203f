package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server only when TEST_REDIS_ADDR is set.
func setupIdempotencyStore(t *testing.T) *IdempotencyStore {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return NewIdempotencyStore(rdb, time.Minute)
}

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	store := setupIdempotencyStore(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	_, err := store.Load(ctx, key)
	assert.True(t, IsMiss(err))

	ok, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	resp, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, resp)

	require.NoError(t, store.Save(ctx, key, StoredResponse{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"x"}`)}))
	resp, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.JSONEq(t, `{"id":"x"}`, string(resp.Body))

	require.NoError(t, store.Release(ctx, key))
	_, err = store.Load(ctx, key)
	assert.True(t, IsMiss(err))
}
