package middleware

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1/response"
	"github.com/mkwawa-heritage/marketplace-api/internal/config"
	"github.com/mkwawa-heritage/marketplace-api/internal/metrics"
)

// tokenBucketScript refills and takes one token atomically. It returns
// {allowed, remaining, retry_after_ms}.
const tokenBucketScript = `
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`

// RateLimiter throttles clients per route with a Redis token bucket. Without
// a Redis client, or when disabled, every request passes.
type RateLimiter struct {
	cfg *config.RateLimitConfig
	rdb *redis.Client
	now func() time.Time
}

func NewRateLimiter(cfg *config.RateLimitConfig, rdb *redis.Client) *RateLimiter {
	return &RateLimiter{
		cfg: cfg,
		rdb: rdb,
		now: time.Now,
	}
}

func (l *RateLimiter) Limit(route string) gin.HandlerFunc {
	if !l.cfg.Enabled || l.rdb == nil {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	return func(ctx *gin.Context) {
		key := l.key(route, ctx.ClientIP())

		vals, err := l.rdb.Eval(ctx.Request.Context(), tokenBucketScript, []string{key},
			l.now().UnixMilli(),
			l.cfg.Capacity,
			l.cfg.RefillTokens,
			l.cfg.RefillInterval.Milliseconds(),
			int64(l.cfg.TTL/time.Second),
		).Result()
		if err != nil {
			// Fail open on Redis errors.
			zap.L().Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			ctx.Next()
			return
		}

		arr, ok := vals.([]interface{})
		if !ok || len(arr) != 3 {
			zap.L().Warn("unexpected rate limiter reply", zap.String("key", key), zap.Any("reply", vals))
			ctx.Next()
			return
		}
		allowed := asInt64(arr[0]) == 1
		remaining := asInt64(arr[1])
		retryMs := asInt64(arr[2])

		ctx.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		ctx.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000))
			ctx.Header("Retry-After", strconv.Itoa(secs))
			metrics.RateLimited(route)
			response.RenderErr(ctx, response.ErrTooManyRequests(secs))
			return
		}

		ctx.Next()
	}
}

func (l *RateLimiter) key(route, clientIP string) string {
	if clientIP == "" {
		clientIP = "unknown"
	}
	return strings.Join([]string{l.cfg.Prefix, route, clientIP}, ":")
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
	return n
}
