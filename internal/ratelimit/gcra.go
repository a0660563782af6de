package ratelimit

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// The key stores the theoretical arrival time (TAT) in unix milliseconds.
// A request is admitted while now >= TAT + interval - burst*interval.
// Replies: allowed, remaining, retry_after_ms, reset_after_ms.
const gcraScript = `
local interval = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])

local t = redis.call("TIME")
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

local tat = tonumber(redis.call("GET", KEYS[1]))
if tat == nil or tat < now then
  tat = now
end

local next_tat = tat + interval
local allow_at = next_tat - (burst * interval)
if now < allow_at then
  return {0, 0, allow_at - now, tat - now}
end

redis.call("SET", KEYS[1], next_tat, "PX", next_tat - now)
return {1, math.floor((now - allow_at) / interval), 0, next_tat - now}
`

type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// GCRA is a Redis-backed generic cell rate limiter shared by every API
// replica. rate is requests per second, burst the number admitted at once.
type GCRA struct {
	client *redis.Client
	script *redis.Script
	now    func() time.Time
}

func NewGCRA(client *redis.Client) *GCRA {
	if client == nil {
		return nil
	}
	return &GCRA{
		client: client,
		script: redis.NewScript(gcraScript),
		now:    time.Now,
	}
}

func (g *GCRA) Allow(ctx context.Context, key string, rate float64, burst int) (*RateLimitResult, error) {
	switch {
	case g == nil || g.client == nil:
		return &RateLimitResult{}, errors.New("rate limiter not configured")
	case key == "":
		return &RateLimitResult{}, errors.New("rate limiter key is empty")
	case rate <= 0 || burst <= 0:
		return &RateLimitResult{}, errors.New("rate limiter rate and burst must be positive")
	}

	interval := emissionInterval(rate)
	reply, err := g.script.Run(ctx, g.client, []string{key}, interval.Milliseconds(), burst).Int64Slice()
	if err != nil {
		return &RateLimitResult{}, err
	}
	if len(reply) != 4 {
		return &RateLimitResult{}, errors.New("invalid rate limit script response")
	}

	retryAfter := time.Duration(reply[2]) * time.Millisecond
	resetAfter := time.Duration(reply[3]) * time.Millisecond
	return &RateLimitResult{
		Allowed:    reply[0] == 1,
		Limit:      burst,
		Remaining:  int(reply[1]),
		ResetTime:  g.now().Add(resetAfter),
		RetryAfter: retryAfter,
	}, nil
}

// emissionInterval is the spacing between admitted requests, at least 1ms.
func emissionInterval(rate float64) time.Duration {
	interval := time.Duration(float64(time.Second) / rate).Truncate(time.Millisecond)
	if interval < time.Millisecond {
		return time.Millisecond
	}
	return interval
}
