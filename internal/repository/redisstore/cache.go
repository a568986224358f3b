package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jazzcoasters-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

type cache struct {
	client *goredis.Client
	prefix string
}

func NewCache(client *goredis.Client, prefix string) domain.Cache {
	return &cache{client: client, prefix: prefix}
}

func (c *cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis cache get failed: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("redis cache decode failed: %w", err)
	}
	return true, nil
}

func (c *cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis cache encode failed: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set failed: %w", err)
	}
	return nil
}
