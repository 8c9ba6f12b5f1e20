package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a Redis-backed fixed-window counter, one window per minute,
// keyed by an arbitrary subject (bearer subject or client IP). It backs the
// gateway's RATE_LIMIT_REQUESTS_PER_MINUTE enforcement (spec §6/§7).
type RateLimiter struct {
	client *redis.Client
	limit  int
}

// NewRateLimiter wraps an existing redis client with a requests-per-minute
// ceiling.
func NewRateLimiter(client *redis.Client, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{client: client, limit: requestsPerMinute}
}

// Allow increments the window counter for subject and reports whether the
// request is admitted. The window is the current wall-clock minute, which
// is part of the key; each key expires 70s after its first increment.
func (r *RateLimiter) Allow(ctx context.Context, subject string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}

	key := BuildKey(PrefixRateLimit, subject+":"+time.Now().Format("200601021504"))

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		r.client.Expire(ctx, key, 70*time.Second)
	}

	return int(count) <= r.limit, nil
}
