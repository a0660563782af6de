package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "charity:lock:"

// Deletes the key only while it still holds the lease token.
const leaseReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var (
	ErrLockNotConfigured = errors.New("lock_not_configured")
	ErrLockHeld          = errors.New("lock_held")
)

// Locker hands out short Redis leases. A lease is best effort: it lapses
// after its ttl whether or not the holder released it.
type Locker struct {
	client  *redis.Client
	release *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, release: redis.NewScript(leaseReleaseScript)}
}

func (l *Locker) Enabled() bool {
	return l != nil && l.client != nil
}

// Lease is a held lock. The zero value and nil are both safe to release.
type Lease struct {
	locker    *Locker
	key       string
	token     string
	ExpiresAt time.Time
}

// Acquire takes key for ttl, or returns ErrLockHeld when another holder
// has it.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if !l.Enabled() {
		return nil, ErrLockNotConfigured
	}
	if key == "" || ttl <= 0 {
		return nil, errors.New("lock key and ttl are required")
	}

	lease := &Lease{
		locker:    l,
		key:       lockKeyPrefix + key,
		token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
	}
	ok, err := l.client.SetNX(ctx, lease.key, lease.token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return lease, nil
}

// Release gives the key back early. Releasing a lapsed lease is a no-op.
func (le *Lease) Release(ctx context.Context) error {
	if le == nil || !le.locker.Enabled() || le.token == "" {
		return nil
	}
	return le.locker.release.Run(ctx, le.locker.client, []string{le.key}, le.token).Err()
}
