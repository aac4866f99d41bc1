package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter counts hits per key in fixed windows. Each window gets its own
// counter key, so a lost EXPIRE can never pin a user at the limit.
type RateLimiter struct {
	client RedisClient
	now    func() time.Time
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

// Allow reports whether one more hit on key fits into limit per window.
// A non-positive limit or window disables limiting.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	bucket := r.now().UnixNano() / int64(window)
	k := fmt.Sprintf("%s:%d", key, bucket)

	n, err := r.client.Incr(ctx, k)
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		// two windows so the key outlives clock skew between bot instances
		if err := r.client.Expire(ctx, k, 2*window); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(limit), nil
}

// UserCommandKey scopes the limiter to one Telegram user and one kind of update.
func UserCommandKey(tgID int64, scope string) string {
	return fmt.Sprintf("ratelimit:%s:%d", scope, tgID)
}
