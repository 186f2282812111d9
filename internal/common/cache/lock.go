package cache

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout 在等待时间内未能获取全部锁
var ErrLockTimeout = errors.New("cache: lock wait timeout")

// releaseScript 仅当值仍为本次持有的令牌时删除键
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const lockPollInterval = 20 * time.Millisecond

// Locker 基于 SET NX PX 的多键互斥锁
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
}

// NewLocker 创建锁管理器，client 为 nil 时所有加锁操作直接成功
func NewLocker(client redis.UniversalClient, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{client: client, ttl: ttl, wait: wait}
}

// Lock 已持有的一组锁
type Lock struct {
	client redis.UniversalClient
	token  string
	keys   []string
}

// Keys 返回已持有的键（已排序）
func (l *Lock) Keys() []string {
	return l.keys
}

// Acquire 按字典序依次获取全部键，任意一个超时则释放已获取的锁并返回 ErrLockTimeout
func (l *Locker) Acquire(ctx context.Context, keys ...string) (*Lock, error) {
	keys = sortedUnique(keys)
	lock := &Lock{client: l.client, token: uuid.NewString()}
	if l.client == nil {
		lock.keys = keys
		return lock, nil
	}

	deadline := time.Now().Add(l.wait)
	for _, key := range keys {
		if err := l.acquireOne(ctx, key, lock.token, deadline); err != nil {
			_ = lock.Release(context.WithoutCancel(ctx))
			return nil, err
		}
		lock.keys = append(lock.keys, key)
	}
	return lock, nil
}

func (l *Locker) acquireOne(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrLockTimeout
		}

		timer := time.NewTimer(lockPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Release 释放持有的全部锁，已过期或被他人持有的键不受影响
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	var firstErr error
	for i := len(l.keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, l.client, []string{l.keys[i]}, l.token).Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.keys = nil
	return firstErr
}

func sortedUnique(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
