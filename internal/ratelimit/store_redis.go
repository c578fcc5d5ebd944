package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"idres/pkg/platform/sentinel"
)

// slidingWindowScript prunes, counts and conditionally records one request
// in a single round trip. Returns {allowed, count, reset_ms}.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  count = count + 1
  allowed = 1
end

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// Redis is a sliding window store shared by every server instance. Each key
// is a sorted set of request timestamps in milliseconds.
type Redis struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

func NewRedis(client redis.Scripter) *Redis {
	return &Redis{client: client, prefix: "idres:ratelimit:", now: time.Now}
}

func (s *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.now().UnixMilli()
	vals, err := slidingWindowScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		now, window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("%w: rate limit check: %v", sentinel.ErrUnavailable, err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("%w: rate limit check: unexpected reply %v", sentinel.ErrUnavailable, vals)
	}
	return Result{
		Allowed:   vals[0] == 1,
		Limit:     limit,
		Remaining: max(0, limit-int(vals[1])),
		ResetAt:   time.UnixMilli(vals[2]),
	}, nil
}
