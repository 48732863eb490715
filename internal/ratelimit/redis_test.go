package ratelimit

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "ratelimit:subject:auth0|director", Key("auth0|director"))
}

func TestRedisRateLimiter_SlidingWindow(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	subject := "test|" + t.Name()
	require.NoError(t, client.Del(ctx, Key(subject)).Err())
	t.Cleanup(func() { client.Del(ctx, Key(subject)) })

	limiter := NewRedisRateLimiter(client, nil)
	require.NoError(t, limiter.Ping(ctx))

	for i := 1; i <= 3; i++ {
		allowed, remaining, err := limiter.AllowRequest(ctx, subject, 3, 60)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
		assert.Equal(t, 3-i, remaining)
	}

	allowed, remaining, err := limiter.AllowRequest(ctx, subject, 3, 60)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}
