// Package cache stores rendered GET responses keyed by request path so that
// mutations can invalidate exactly the views they change.
package cache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a view cache. A path holds one entry per query string variant;
// Invalidate drops every variant of a path at once.
type Store interface {
	Get(ctx context.Context, path, variant string) ([]byte, bool, error)
	Set(ctx context.Context, path, variant string, body []byte) error
	Invalidate(ctx context.Context, paths ...string) error
}

const keyPrefix = "view:"

// Redis keeps every path in its own hash: field = raw query, value = body.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient creates a cache from an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// CanonicalPath maps every spelling chi routes to the same view, so
// "/v1/threads/" and "/v1/threads" share one entry.
func CanonicalPath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean("/" + p)
}

func key(p string) string {
	return keyPrefix + CanonicalPath(p)
}

func (c *Redis) Get(ctx context.Context, path, variant string) ([]byte, bool, error) {
	body, err := c.client.HGet(ctx, key(path), variant).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read view %s: %w", path, err)
	}
	return body, true, nil
}

// Set stores body and restarts the path's TTL.
func (c *Redis) Set(ctx context.Context, path, variant string, body []byte) error {
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key(path), variant, body)
	if c.ttl > 0 {
		pipe.Expire(ctx, key(path), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write view %s: %w", path, err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context, paths ...string) error {
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			keys = append(keys, key(p))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate views: %w", err)
	}
	return nil
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}

// Nop is used when no Redis is configured: every lookup misses.
type Nop struct{}

func (Nop) Get(context.Context, string, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, string, []byte) error         { return nil }
func (Nop) Invalidate(context.Context, ...string) error               { return nil }
