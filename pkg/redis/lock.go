package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired is returned when the lock is still held by someone else when ctx ends
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld is returned when releasing a lock that expired or changed owner
	ErrLockNotHeld = errors.New("lock not held")
)

// deletes the key only while it still carries our token
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

const (
	minRetryDelay = 10 * time.Millisecond
	maxRetryDelay = 250 * time.Millisecond
)

// Locker gives mutual exclusion per key across every process sharing the
// Redis. A held lock expires after ttl so a crashed holder cannot wedge a key.
type Locker struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// Lock is a held lock.
type Lock struct {
	client *Client
	key    string
	token  string
}

// NewLocker creates a Locker whose keys are prefix+key.
func NewLocker(client *Client, prefix string, ttl time.Duration) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Lock blocks until key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (*Lock, error) {
	delay := minRetryDelay
	for {
		lock, err := l.TryLock(ctx, key)
		if err == nil {
			return lock, nil
		}
		if ctx.Err() != nil {
			return nil, ErrLockNotAcquired
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockNotAcquired
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

// TryLock makes a single attempt at key.
func (l *Locker) TryLock(ctx context.Context, key string) (*Lock, error) {
	lock := &Lock{
		client: l.client,
		key:    l.prefix + key,
		token:  uuid.New().String(),
	}

	ok, err := l.client.rdb.SetNX(ctx, lock.key, lock.token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	l.client.logger.WithContext(ctx).Debugf("Acquired lock: %s", lock.key)
	return lock, nil
}

// Unlock releases the lock if this holder still owns it.
func (lock *Lock) Unlock(ctx context.Context) error {
	released, err := unlockScript.Run(ctx, lock.client.rdb, []string{lock.key}, lock.token).Int64()
	if err != nil {
		return err
	}
	if released == 0 {
		return ErrLockNotHeld
	}

	lock.client.logger.WithContext(ctx).Debugf("Released lock: %s", lock.key)
	return nil
}
