// Package ratelimit provides a Redis-backed request rate limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of one limiter check.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool
	// Remaining is the quota left in the current window.
	Remaining int
	// RetryAfter is how long until the window resets; only meaningful
	// when the request was denied.
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// Config holds limiter configuration.
type Config struct {
	Client      *redis.Client
	MaxRequests int
	Window      time.Duration
}

// NewLimiter creates a fixed-window limiter.
func NewLimiter(cfg *Config) (*Limiter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.MaxRequests <= 0 {
		return nil, fmt.Errorf("max requests must be positive")
	}

	window := cfg.Window
	if window == 0 {
		window = time.Minute
	}

	return &Limiter{
		client: cfg.Client,
		max:    cfg.MaxRequests,
		window: window,
	}, nil
}

// Allow consumes one request from the key's quota and reports whether it
// may proceed. The key is typically the authenticated user ID, falling
// back to client IP for unauthenticated routes.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	redisKey := "ratelimit:" + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// First hit in a window starts the window clock.
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return nil, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	if count > int64(l.max) {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return &Result{Allowed: false, Remaining: 0, RetryAfter: ttl}, nil
	}

	return &Result{
		Allowed:   true,
		Remaining: l.max - int(count),
	}, nil
}

// Limit returns the configured per-window maximum.
func (l *Limiter) Limit() int {
	return l.max
}
