package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadKeyPrefix = "secureops:unread:"

// UnreadCache caches per-user unread notification counts in Redis so
// the badge poll does not hit Postgres on every request. Counts are
// invalidated whenever a notification is created, read, or deleted.
type UnreadCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewUnreadCache(client *redis.Client, ttl time.Duration) *UnreadCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UnreadCache{redis: client, ttl: ttl}
}

func unreadKey(userID string) string {
	return unreadKeyPrefix + userID
}

// Get returns the cached count for the user. The second return value
// reports whether the cache held a value.
func (c *UnreadCache) Get(ctx context.Context, userID string) (int, bool, error) {
	data, err := c.redis.Get(ctx, unreadKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get unread count: %w", err)
	}

	count, err := strconv.Atoi(data)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt unread count for %s: %w", userID, err)
	}
	return count, true, nil
}

// Set stores the count for the user.
func (c *UnreadCache) Set(ctx context.Context, userID string, count int) error {
	if err := c.redis.Set(ctx, unreadKey(userID), strconv.Itoa(count), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set unread count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count for the user.
func (c *UnreadCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.redis.Del(ctx, unreadKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate unread count: %w", err)
	}
	return nil
}
