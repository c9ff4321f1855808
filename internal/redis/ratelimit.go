package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type RateLimitConfig struct {
	MessageLimit  int
	MessageWindow time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MessageLimit:  60,
		MessageWindow: time.Minute,
	}
}

// RateLimiter caps how many messages a user may send within a sliding
// window. Each accepted send is a member of a sorted set scored by its
// timestamp in milliseconds.
type RateLimiter struct {
	client *goredis.Client
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client *goredis.Client, config RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if config.MessageWindow <= 0 {
		config.MessageWindow = def.MessageWindow
	}
	if config.MessageLimit <= 0 {
		config.MessageLimit = def.MessageLimit
	}
	return &RateLimiter{client: client, config: config}
}

// KEYS[1] sorted set; ARGV now_ms, window_ms, limit, member.
// Returns {allowed, remaining, reset_in_ms}.
var slidingWindowScript = goredis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, ARGV[4])
		redis.call('PEXPIRE', key, window)
		return {1, limit - current - 1, window}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset = window
	if #oldest >= 2 then
		reset = tonumber(oldest[2]) + window - now
	end
	return {0, 0, reset}
`)

func messageKey(userID uuid.UUID) string {
	return "ratelimit:" + userID.String() + ":messages"
}

// AllowMessage checks and consumes one message from the user's quota.
func (r *RateLimiter) AllowMessage(ctx context.Context, userID uuid.UUID) (*RateLimitResult, error) {
	now := time.Now()
	window := r.config.MessageWindow
	res, err := slidingWindowScript.Run(ctx, r.client, []string{messageKey(userID)},
		now.UnixMilli(), window.Milliseconds(), r.config.MessageLimit, uuid.NewString()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("rate limit check: unexpected reply length %d", len(res))
	}
	return &RateLimitResult{
		Allowed:   res[0] == 1,
		Remaining: int(res[1]),
		ResetIn:   time.Duration(res[2]) * time.Millisecond,
		Limit:     r.config.MessageLimit,
	}, nil
}

// ResetUser clears the user's message window.
func (r *RateLimiter) ResetUser(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, messageKey(userID)).Err()
}
