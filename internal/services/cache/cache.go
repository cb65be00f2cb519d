package cache

import (
	"context"
	"time"
)

// URLCache remembers resolved thumbnail URLs.
type URLCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, url string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
