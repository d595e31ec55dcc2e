package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCommander interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisChecker is a distributed fixed-window rate limiter backed by Redis,
// for deployments that run more than one instance behind a load balancer.
type RedisChecker struct {
	client redisCommander
	prefix string
}

// NewRedis creates a new Redis-backed rate limiter
func NewRedis(client *redis.Client, prefix string) *RedisChecker {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisChecker{client: client, prefix: prefix}
}

func (c *RedisChecker) key(k string) string {
	return c.prefix + k
}

// Check counts the request with INCR and keeps the window expiry armed: any
// hit that finds the key without a TTL sets one, so a failed PEXPIRE on an
// earlier hit cannot leave the counter alive forever. On Redis errors it
// fails open (allows the request).
func (c *RedisChecker) Check(key string, window time.Duration, max int) Decision {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxRequests
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	now := time.Now()
	k := c.key(key)

	count, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{Allowed: true, Limit: max, Remaining: max, Reset: now.Add(window)}
	}

	reset := now.Add(window)
	if ttl, err := c.client.PTTL(ctx, k).Result(); err == nil && ttl > 0 {
		reset = now.Add(ttl)
	} else {
		c.client.PExpire(ctx, k, window)
	}

	remaining := max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   int(count) <= max,
		Limit:     max,
		Remaining: remaining,
		Reset:     reset,
	}
}

// Reset removes the counter for a key
func (c *RedisChecker) Reset(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.client.Del(ctx, c.key(key))
}

// Ensure RedisChecker implements Checker interface
var _ Checker = (*RedisChecker)(nil)
