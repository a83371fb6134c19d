package httpx

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var ErrLimiterUnavailable = errors.New("httpx: rate limiter store unavailable")

// RedisLimiter is a fixed-window counter shared by every instance pointed at
// the same Redis. The first hit in a window sets the key's expiry.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	cfg    RateLimitConfig
}

func NewRedisLimiter(client redis.Cmdable, prefix string, cfg RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, cfg: cfg}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	d := Decision{Limit: l.cfg.RequestsPerWindow, Window: l.cfg.Window}
	redisKey := l.prefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return d, fmt.Errorf("%w: %w", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.cfg.Window).Err(); err != nil {
			return d, fmt.Errorf("%w: %w", ErrLimiterUnavailable, err)
		}
	}

	if count <= int64(l.cfg.RequestsPerWindow) {
		d.Allowed = true
		return d, nil
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return d, fmt.Errorf("%w: %w", ErrLimiterUnavailable, err)
	}
	if ttl < 0 {
		// Lost the expiry (crash between INCR and EXPIRE); restore it.
		_ = l.client.Expire(ctx, redisKey, l.cfg.Window).Err()
		ttl = l.cfg.Window
	}
	d.RetryAfter = ttl
	return d, nil
}

// Ping checks connectivity, for readiness probes.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

var _ Limiter = (*RedisLimiter)(nil)
var _ Limiter = (*MemoryLimiter)(nil)
