package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitPrefix is the Redis key prefix for per-caller limits.
	rateLimitPrefix = "ratelimit:caller:"
	// rateLimitTTL is the TTL for rate limit keys.
	rateLimitTTL = 120 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckCallerRateLimit checks and updates the rate limit for one
// authenticated caller. The external id is hashed so raw provider ids
// never appear in Redis keys. Fails open on Redis errors.
func (c *Cache) CheckCallerRateLimit(ctx context.Context, externalID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	if ratePerMinute == 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst)}, nil
	}

	key := rateLimitPrefix + hashCaller(externalID)
	ratePerSecond := float64(ratePerMinute) / 60.0
	now := time.Now().Unix()

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		ratePerSecond, burst, now, int(rateLimitTTL.Seconds()),
	).Int64Slice()

	if err != nil {
		// Fail open on Redis errors - allow the request
		return &RateLimitResult{Allowed: true, Remaining: int64(burst)}, nil
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// hashCaller creates a truncated SHA256 hash of an external id.
func hashCaller(externalID string) string {
	hash := sha256.Sum256([]byte(externalID))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
