package domain

import (
	"context"
	"time"
)

// Cache stores JSON-serialisable values for the read-only feed endpoints.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
