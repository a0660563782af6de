package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/charity/internal/clock"
	"github.com/smallbiznis/charity/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowLimiter(t *testing.T) {
	c := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewWindowLimiter(c, 2, time.Minute)

	assert.True(t, l.Allow("10.0.0.1").Allowed)
	second := l.Allow("10.0.0.1")
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	denied := l.Allow("10.0.0.1")
	assert.False(t, denied.Allowed)
	assert.Equal(t, time.Minute, denied.RetryAfter)

	assert.True(t, l.Allow("10.0.0.2").Allowed, "keys are independent")

	c.Advance(time.Minute)
	assert.True(t, l.Allow("10.0.0.1").Allowed, "window resets")
}

func TestIntentLimiterFallsBackToWindow(t *testing.T) {
	c := clock.NewFakeClock(time.Now())
	l := NewIntentLimiter(config.Config{RateLimit: config.RateLimitConfig{
		DonationIntentRate:  1,
		DonationIntentBurst: 1,
		DonationIntentLimit: 1,
		WindowSeconds:       60,
	}}, nil, c)
	require.False(t, l.Distributed())

	res, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestNilLockerIsDisabled(t *testing.T) {
	locker := NewLocker(nil)
	assert.False(t, locker.Enabled())

	lease, err := locker.Acquire(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrLockNotConfigured)
	assert.Nil(t, lease)
	assert.NoError(t, lease.Release(context.Background()))
}

func TestEmissionInterval(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, emissionInterval(5))
	assert.Equal(t, 3*time.Second, emissionInterval(1.0/3))
	assert.Equal(t, time.Millisecond, emissionInterval(5000))
}

func TestNilGCRARejects(t *testing.T) {
	var g *GCRA
	res, err := g.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
	assert.False(t, res.Allowed)
}
