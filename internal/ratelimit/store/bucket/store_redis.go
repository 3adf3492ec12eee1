package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"backupauth/internal/ratelimit/models"
	"backupauth/pkg/requestcontext"
)

const redisKeyPrefix = "ratelimit:"

// slidingWindowScript keeps one sorted-set member per charge, scored by its
// timestamp in milliseconds. Trimming, counting and charging run atomically.
//
// KEYS[1] bucket key
// ARGV[1] now (ms), ARGV[2] window (ms), ARGV[3] cost, ARGV[4] limit, ARGV[5] member prefix
//
// Returns {allowed, used, reset_at_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local cost = tonumber(ARGV[3])
local limit = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local current = redis.call('ZCARD', key)

if current + cost > limit then
  local reset = now + window
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  if oldest[2] then
    reset = tonumber(oldest[2]) + window
  end
  return {0, current, reset}
end

for i = 1, cost do
  redis.call('ZADD', key, now, ARGV[5] .. ':' .. i)
end
redis.call('PEXPIRE', key, window)

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, current + cost, tonumber(oldest[2]) + window}
`)

// RedisBucketStore shares sliding-window counters across replicas.
type RedisBucketStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed bucket store.
func NewRedis(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

func (s *RedisBucketStore) AllowN(ctx context.Context, key string, cost, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if err := validateArgs(key, cost, limit, window); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	raw, err := slidingWindowScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + key},
		now.UnixMilli(), window.Milliseconds(), cost, limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run rate limit script: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(raw))
	}

	resetAt := time.UnixMilli(raw[2])
	if raw[0] == 0 {
		return models.NewDeniedResult(limit, resetAt, now), nil
	}
	return models.NewAllowedResult(limit, int(raw[1]), resetAt), nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("rate limit key is required")
	}
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}

// GetCurrentCount returns the number of charges the key currently holds. Redis
// expires whole buckets by TTL, so members older than the window may still be
// counted until the next charge trims them.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("rate limit key is required")
	}
	n, err := s.client.ZCard(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("get rate limit count: %w", err)
	}
	return int(n), nil
}
