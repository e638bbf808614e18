package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/qrtrail/qrtrail/internal/app/model"
	"github.com/redis/go-redis/v9"
)

const (
	codeCachePrefix     = "qr:resolve:"
	defaultCodeCacheTTL = 60 * time.Second
)

// CodeCache caches resolved QR codes by the identifier they were resolved
// with. The short TTL bounds how long a deactivated code can still be served
// from cache.
type CodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCodeCache creates a resolution cache on top of the given client.
func NewCodeCache(client *redis.Client, ttl time.Duration) *CodeCache {
	if ttl <= 0 {
		ttl = defaultCodeCacheTTL
	}
	return &CodeCache{client: client, ttl: ttl}
}

// Get returns the cached code for an identifier, or (nil, nil) on a miss.
func (c *CodeCache) Get(ctx context.Context, identifier string) (*model.QRCode, error) {
	val, err := c.client.Get(ctx, codeCachePrefix+identifier).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var code model.QRCode
	if err := json.Unmarshal([]byte(val), &code); err != nil {
		return nil, err
	}
	return &code, nil
}

// Set stores a resolved code under the identifier it resolved from.
func (c *CodeCache) Set(ctx context.Context, identifier string, code *model.QRCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, codeCachePrefix+identifier, data, c.ttl).Err()
}
