package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers GET and SET from a map. Any other command panics.
type fakeRedis struct {
	redis.Cmdable
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = fmt.Sprint(value)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStore_GetSet(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisStoreWithClient(client, time.Hour)

	_, found, err := store.Get(ctx, LastActivityKey("e1"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, LastActivityKey("e1"), "2024-01-05T10:00:00Z"))

	value, found, err := store.Get(ctx, LastActivityKey("e1"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2024-01-05T10:00:00Z", value)
	assert.Equal(t, time.Hour, client.ttls[LastActivityKey("e1")])
}

func TestRedisStore_ClientErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	client.err = errors.New("connection refused")
	store := NewRedisStoreWithClient(client, 0)

	_, found, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "failed to read k")

	err = store.Set(ctx, "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRedisStore_EmptyKey(t *testing.T) {
	store := NewRedisStoreWithClient(newFakeRedis(), 0)

	assert.ErrorIs(t, store.Set(context.Background(), "", "v"), ErrKeyEmpty)
	_, _, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrKeyEmpty)
}
