package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phambaophuc/image-thumbnails/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "thumbcache:"
	redisTimeout = 3 * time.Second
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   2,
		DialTimeout:  redisTimeout,
		ReadTimeout:  redisTimeout,
		WriteTimeout: redisTimeout,
	})
	return &RedisCache{client: client}
}

func (c *RedisCache) key(k string) string { return keyPrefix + k }

// Get returns ok=false on a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	url, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache get error: %w", err)
	}
	return url, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, url string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), url, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// Purge removes every cached URL and returns how many were dropped.
func (c *RedisCache) Purge(ctx context.Context) (int, error) {
	var removed int
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("cache delete error: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache scan error: %w", err)
	}
	return removed, nil
}

func (c *RedisCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	pipe := c.client.Pipeline()
	infoCmd := pipe.Info(ctx, "memory")
	sizeCmd := pipe.DBSize(ctx)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	var cached int64
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		cached++
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"db_keys":     sizeCmd.Val(),
		"cached_urls": cached,
		"used_memory": infoField(infoCmd.Val(), "used_memory_human"),
	}, nil
}

func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func infoField(info, name string) string {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), name+":"); ok {
			return v
		}
	}
	return ""
}
