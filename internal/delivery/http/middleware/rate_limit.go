package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"jazzcoasters-backend/internal/delivery/http/response"
	"jazzcoasters-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: client IP from proxy headers)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis (default: "rl:ip:")
	KeyPrefix string
	// Whether to fail closed (reject) when Redis is unavailable
	FailClosed bool
	// Redis returns the shared client, or nil to use the in-memory counters
	Redis func() *goredis.Client
	// Audit receives rate_limit_triggered events; nil uses the default logger
	Audit *security.SecurityLogger
}

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// headerClientIP resolves the caller the same way the contact pipeline does.
func headerClientIP(c *gin.Context) string {
	return security.ClientIP(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP"))
}

// DefaultRateLimitConfig returns sensible defaults for API rate limiting
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:      100,             // 100 requests
		Window:     1 * time.Minute, // per minute
		KeyPrefix:  "rl:ip:",
		FailClosed: false, // Fail open by default for availability
		KeyFunc:    headerClientIP,
	}
}

type rateLimiter struct {
	config RateLimitConfig
	store  sync.Map
}

// RateLimitMiddleware creates a rate limiting middleware with the given config
// Uses Redis when available, falls back to in-memory when not
func RateLimitMiddleware(ctx context.Context, config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = headerClientIP
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rl:ip:"
	}
	if config.Redis == nil {
		config.Redis = func() *goredis.Client { return nil }
	}

	rl := &rateLimiter{config: config}
	go rl.cleanup(ctx, 5*time.Minute)

	return rl.handle
}

func (rl *rateLimiter) handle(c *gin.Context) {
	config := rl.config
	fullKey := config.KeyPrefix + config.KeyFunc(c)
	now := time.Now()

	var count int
	var resetAt time.Time
	var err error

	// Try Redis first
	if redisClient := config.Redis(); redisClient != nil {
		count, resetAt, err = checkRateLimitRedis(c.Request.Context(), redisClient, fullKey, config)
		if err != nil {
			// Redis error - use fallback or fail based on config
			if config.FailClosed {
				rl.logError(c, "redis_error", err)
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.")
				c.Abort()
				return
			}
			count, resetAt = rl.checkInMemory(fullKey, now)
		}
	} else {
		count, resetAt = rl.checkInMemory(fullKey, now)
	}

	if count > config.Limit {
		retryAfter := int(time.Until(resetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", "0")
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))
		c.Header("Retry-After", strconv.Itoa(retryAfter))

		rl.audit().LogRateLimitTriggered(
			c.Request.Context(),
			headerClientIP(c),
			c.GetHeader("User-Agent"),
			response.RequestID(c),
			c.FullPath(),
		)

		response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		c.Abort()
		return
	}

	remaining := config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

	c.Next()
}

// checkRateLimitRedis checks rate limit using Redis with atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	// Parse result [count, ttl]
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

// checkInMemory checks rate limit using the in-process fixed window (fallback)
func (rl *rateLimiter) checkInMemory(key string, now time.Time) (int, time.Time) {
	entryI, _ := rl.store.LoadOrStore(key, &rateLimitEntry{
		resetAt: now.Add(rl.config.Window),
	})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(rl.config.Window)
	}
	entry.count++

	return entry.count, entry.resetAt
}

// cleanup drops expired in-memory entries until ctx is done
func (rl *rateLimiter) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			rl.store.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimitEntry)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					rl.store.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}
}

func (rl *rateLimiter) audit() *security.SecurityLogger {
	if rl.config.Audit != nil {
		return rl.config.Audit
	}
	return security.DefaultLogger()
}

func (rl *rateLimiter) logError(c *gin.Context, errorType string, err error) {
	rl.audit().Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		Reason:      errorType,
		SubjectType: "system",
		IP:          headerClientIP(c),
		RequestID:   response.RequestID(c),
		Details: map[string]interface{}{
			"error": err.Error(),
		},
	})
}
