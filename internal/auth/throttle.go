package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleKeyPrefix = "login_attempts:"

// Throttle limits login attempts per email inside a fixed window, backed by
// redis so the limit holds across instances.
type Throttle struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

// NewThrottle creates a login throttle. limit is the number of attempts
// allowed per window.
func NewThrottle(rdb *redis.Client, limit int, window time.Duration) *Throttle {
	if rdb == nil {
		panic("redis client is nil")
	}

	return &Throttle{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
	}
}

// Allow records one attempt for the email and reports whether it is still
// within the limit. The attempt is counted before the credential check, so
// hammering a wrong password burns the budget.
func (t *Throttle) Allow(ctx context.Context, email string) (bool, error) {
	key := throttleKeyPrefix + strings.ToLower(email)

	n, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if n == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			return false, err
		}
	}

	return n <= t.limit, nil
}

// Reset clears the attempt counter for the email after a successful login.
func (t *Throttle) Reset(ctx context.Context, email string) error {
	return t.rdb.Del(ctx, throttleKeyPrefix+strings.ToLower(email)).Err()
}
