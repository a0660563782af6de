package ratelimit

import (
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/charity/internal/clock"
)

// WindowLimiter is an in-process fixed window counter keyed by caller. It
// backs the public endpoints when Redis is not configured.
type WindowLimiter struct {
	mu      sync.Mutex
	clock   clock.Clock
	limit   int
	window  time.Duration
	entries map[string]*windowEntry
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

func NewWindowLimiter(c clock.Clock, limit int, window time.Duration) *WindowLimiter {
	if c == nil {
		c = clock.SystemClock{}
	}
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &WindowLimiter{
		clock:   c,
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
	}
}

func (l *WindowLimiter) Allow(key string) *RateLimitResult {
	key = strings.TrimSpace(key)
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	entry, ok := l.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &windowEntry{resetAt: now.Add(l.window)}
		l.entries[key] = entry
	}

	if entry.count >= l.limit {
		return &RateLimitResult{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			ResetTime:  entry.resetAt,
			RetryAfter: entry.resetAt.Sub(now),
		}
	}

	entry.count++
	return &RateLimitResult{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - entry.count,
		ResetTime: entry.resetAt,
	}
}

// sweep drops expired windows once the map grows past a few thousand keys.
func (l *WindowLimiter) sweep(now time.Time) {
	if len(l.entries) < 4096 {
		return
	}
	for key, entry := range l.entries {
		if !now.Before(entry.resetAt) {
			delete(l.entries, key)
		}
	}
}
