package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestUnreadCacheRoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewUnreadCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "empty cache should miss")

	require.NoError(t, cache.Set(ctx, "user-1", 7))

	count, ok, err := cache.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, count)

	// Other users are unaffected
	_, ok, err = cache.Get(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnreadCacheInvalidate(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewUnreadCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user-1", 3))
	require.NoError(t, cache.Invalidate(ctx, "user-1"))

	_, ok, err := cache.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "invalidated entry should miss")

	// Invalidating a missing key is not an error
	require.NoError(t, cache.Invalidate(ctx, "user-missing"))
}

func TestUnreadCacheExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewUnreadCache(client, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user-1", 5))

	mr.FastForward(31 * time.Second)

	_, ok, err := cache.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after TTL")
}

func TestUnreadCacheCorruptValue(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewUnreadCache(client, time.Minute)
	ctx := context.Background()

	mr.Set(unreadKey("user-1"), "not-a-number")

	_, _, err := cache.Get(ctx, "user-1")
	assert.Error(t, err)
}
