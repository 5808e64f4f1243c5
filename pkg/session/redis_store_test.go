package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, "test:")
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, TokenKey, "tok"))
	got, err := mr.Get("test:" + TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	v, ok, err := store.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	require.NoError(t, store.Delete(ctx, TokenKey, UserKey))
	assert.False(t, mr.Exists("test:"+TokenKey))

	_, ok, err = store.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionSurvivesRedisOutage(t *testing.T) {
	mr, store := newTestRedis(t)
	s := New(store)
	s.SetToken("tok")
	assert.True(t, s.Persistent())

	mr.Close()
	s.ClearToken()
	assert.False(t, s.Persistent())
	assert.Equal(t, "", s.Token())
	s.SetToken("memory-only")
	assert.Equal(t, "memory-only", s.Token())
}
