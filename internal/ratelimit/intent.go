package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/charity/internal/clock"
	"github.com/smallbiznis/charity/internal/config"
)

const keyDonationIntentIP = "donation:intent:ip:%s"

// IntentLimiter throttles donation intent creation per client IP. It uses
// the Redis GCRA limiter when available and an in-process window otherwise.
type IntentLimiter struct {
	bucket *GCRA
	window *WindowLimiter

	rate  float64
	burst int
}

func NewIntentLimiter(cfg config.Config, bucket *GCRA, c clock.Clock) *IntentLimiter {
	limitCfg := cfg.RateLimit
	window := time.Duration(limitCfg.WindowSeconds) * time.Second
	return &IntentLimiter{
		bucket: bucket,
		window: NewWindowLimiter(c, limitCfg.DonationIntentLimit, window),
		rate:   limitCfg.DonationIntentRate,
		burst:  limitCfg.DonationIntentBurst,
	}
}

func (l *IntentLimiter) Distributed() bool {
	return l != nil && l.bucket != nil && l.rate > 0 && l.burst > 0
}

func (l *IntentLimiter) Allow(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if l == nil {
		return &RateLimitResult{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyDonationIntentIP, strings.TrimSpace(clientIP))
	if l.Distributed() {
		return l.bucket.Allow(ctx, key, l.rate, l.burst)
	}
	return l.window.Allow(key), nil
}
