package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/digimosa/exif-inspector/internal/models"
)

const keyPrefix = "report:"

// RedisCache keeps finished reports keyed by content fingerprint, so
// re-uploads of the same bytes skip extraction. Keys scoped by the service
// look like report:<allowlist generation>:<fingerprint>.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to the redis instance named by url, e.g.
// redis://localhost:6379/0.
func New(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewWithClient(rdb, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func key(fingerprint string) string {
	return keyPrefix + fingerprint
}

// Get returns the cached report, or nil when there is none.
func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*models.Report, error) {
	raw, err := c.rdb.Get(ctx, key(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r models.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decoding cached report: %w", err)
	}
	return &r, nil
}

func (c *RedisCache) Set(ctx context.Context, fingerprint string, r models.Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(fingerprint), raw, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
