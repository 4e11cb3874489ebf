package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle(t *testing.T, limit int, window time.Duration) (*Throttle, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewThrottle(rdb, limit, window), mr
}

func TestThrottleAllowsWithinLimit(t *testing.T) {
	throttle, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := throttle.Allow(ctx, "ops@example.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, err := throttle.Allow(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "attempt over the limit must be blocked")
}

func TestThrottleIsPerEmail(t *testing.T) {
	throttle, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := throttle.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = throttle.Allow(ctx, "b@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = throttle.Allow(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThrottleEmailIsCaseInsensitive(t *testing.T) {
	throttle, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := throttle.Allow(ctx, "Ops@Example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = throttle.Allow(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThrottleWindowExpires(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := throttle.Allow(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = throttle.Allow(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = throttle.Allow(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestThrottleResetClearsCounter(t *testing.T) {
	throttle, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := throttle.Allow(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, throttle.Reset(ctx, "ops@example.com"))

	ok, err = throttle.Allow(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestThrottleBackendDownReturnsError(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	mr.Close()

	_, err := throttle.Allow(context.Background(), "ops@example.com")
	assert.Error(t, err)
}
