package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fla"

// Config holds failure limiter tuning parameters.
type Config struct {
	// Limit is the number of failed attempts tolerated inside one window.
	Limit int
	// Window is the fixed counting window. Counters expire with it.
	Window time.Duration
}

// Limiter tracks failed authentication attempts per identity key inside a
// fixed window backed by Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	prefix string
	config Config
}

// New creates a failure [Limiter] backed by the given Redis client.
// An empty prefix falls back to the package default.
func New(redisClient redis.UniversalClient, prefix string, cfg Config) *Limiter {
	if prefix == "" {
		prefix = keyPrefix
	}
	return &Limiter{
		redis:  redisClient,
		prefix: prefix,
		config: cfg,
	}
}

func (l *Limiter) key(identity string) string {
	return l.prefix + ":" + identity
}

// Check reports whether another attempt is allowed for the identity.
// When the window budget is spent it returns [ErrLimited] together with the
// remaining window as a retry-after hint; the rejected attempt is not
// counted, so being over budget never compounds the penalty.
func (l *Limiter) Check(ctx context.Context, identity string) (time.Duration, error) {
	key := l.key(identity)

	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count < int64(l.config.Limit) {
		return 0, nil
	}

	retryAfter, err := l.redis.PTTL(ctx, key).Result()
	if err != nil || retryAfter < 0 {
		retryAfter = l.config.Window
	}
	return retryAfter, ErrLimited
}

// RecordFailure counts one failed attempt for the identity. The counter TTL
// is set only on the first hit of the window, giving fixed-window semantics.
func (l *Limiter) RecordFailure(ctx context.Context, identity string) error {
	key := l.key(identity)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return nil
}

// Attempts returns the current failure count for the identity. Missing keys
// report zero and do not reveal whether the identity exists.
func (l *Limiter) Attempts(ctx context.Context, identity string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(identity)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}
