package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jazzcoasters-backend/internal/domain"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	ipKeyPrefix       = "contact:rl:ip:"
	cooldownKeyPrefix = "contact:cd:email:"
)

// Lua script for sliding window rate limiting
// KEYS[1] = window key (sorted set, score = ms timestamp)
// ARGV[1] = max entries allowed in the window
// ARGV[2] = window size in milliseconds
// ARGV[3] = current timestamp in milliseconds
// ARGV[4] = unique member for this attempt
// ARGV[5] = cutoff timestamp; entries at or below it are stale
// Returns: 1 if recorded, 0 if the window is full (attempt not stored)
const slidingWindowScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[5])

local count = redis.call('ZCARD', key)
if count >= limit then
    redis.call('PEXPIRE', key, ARGV[2])
    return 0
end

redis.call('ZADD', key, ARGV[3], ARGV[4])
redis.call('PEXPIRE', key, ARGV[2])
return 1
`

type abuseStore struct {
	client *goredis.Client
	script *goredis.Script
}

// NewAbuseStore keeps the RateWindow in sorted sets and the CooldownRegistry
// in plain keys. Both expire on their own, so idle IPs and addresses are reclaimed.
func NewAbuseStore(client *goredis.Client) domain.AbuseStore {
	return &abuseStore{
		client: client,
		script: goredis.NewScript(slidingWindowScript),
	}
}

func (s *abuseStore) RecordAttempt(ctx context.Context, ip string, now time.Time, window time.Duration, limit int) (bool, error) {
	nowMs := now.UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	cutoff := nowMs - window.Milliseconds()

	res, err := s.script.Run(ctx, s.client, []string{ipKey(ip)},
		limit, window.Milliseconds(), nowMs, member, cutoff).Int64()
	if err != nil {
		return false, fmt.Errorf("redis sliding window eval failed: %w", err)
	}
	return res == 1, nil
}

func (s *abuseStore) ClaimCooldown(ctx context.Context, email string, now time.Time, cooldown time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, cooldownKey(email), now.UnixMilli(), cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("redis cooldown claim failed: %w", err)
	}
	return ok, nil
}

// Header-derived values are untrusted, so keys carry a fixed-size hash instead.
func ipKey(ip string) string {
	return ipKeyPrefix + strconv.FormatUint(xxhash.Sum64String(ip), 16)
}

func cooldownKey(email string) string {
	return cooldownKeyPrefix + strconv.FormatUint(xxhash.Sum64String(strings.ToLower(email)), 16)
}
