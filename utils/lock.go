// File: utils/lock.go
package utils

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when a named lock stays held past the
// acquisition window.
var ErrLockNotAcquired = errors.New("named lock not acquired")

// Locker is the named mutual-exclusion primitive used around
// read-modify-write sequences on a contended key, e.g. one coach's day
// or one customer's daily check-in.
type Locker interface {
	// Acquire blocks until the lock for key is held or the context
	// expires, then returns a release function. The lock auto-renews
	// until released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RedisLocker implements Locker with SET NX PX plus a token-guarded
// release, so a stale holder can never release a successor's lock.
type RedisLocker struct {
	Client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{Client: client}
}

var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0`)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	for {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockNotAcquired
		case <-time.After(50 * time.Millisecond):
		}
	}

	// Renew at a third of the TTL until released, so a slow holder does
	// not lose the lock mid-mutation.
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				renewCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				if err := renewScript.Run(renewCtx, l.Client, []string{key}, token, ttl.Milliseconds()).Err(); err != nil {
					GetLogger().Sugar().Warnf("lock: failed to renew %s: %v", key, err)
				}
				cancel()
			}
		}
	}()

	release := func() {
		close(done)
		relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			GetLogger().Sugar().Warnf("lock: failed to release %s: %v", key, err)
		}
	}
	return release, nil
}
