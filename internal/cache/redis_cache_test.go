package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	assert.ErrorIs(t, c.Get(ctx, "k", &dest), ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePattern(ctx, "insight:*"))
}

func TestInsightKey(t *testing.T) {
	assert.Equal(t, "insight:t-1:2026-10-17", InsightKey("t-1", "2026-10-17"))
	assert.Equal(t, "insight:all:2026-10-17", InsightKey("", "2026-10-17"))
}

func TestRedisCache_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedisCache(client, nil)

	var dest string
	err := c.Get(context.Background(), "k", &dest)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
