// Package limitsvc throttles repeated actions, such as password reset requests.
package limitsvc

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/icba/core"
)

const keyPrefix = "icba:limit:"

type redisLimiter struct {
	rdb *redis.Client
}

var _ core.Limiter = (*redisLimiter)(nil)

// NewRedisLimiter returns a Limiter shared by every API instance using rdb.
func NewRedisLimiter(rdb *redis.Client) core.Limiter {
	return &redisLimiter{rdb: rdb}
}

func (l redisLimiter) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	ok, err := l.rdb.SetNX(ctx, keyPrefix+key, "locked", window).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking rate limit in redis")
	}
	return ok, nil
}

// NewRedisClient connects to the configured redis server.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

type memoryLimiter struct {
	mu    sync.Mutex
	until map[string]time.Time
}

var _ core.Limiter = (*memoryLimiter)(nil)

// NewMemoryLimiter returns a process local Limiter, used when no redis server is configured.
func NewMemoryLimiter() core.Limiter {
	return &memoryLimiter{until: make(map[string]time.Time)}
}

func (l *memoryLimiter) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	now := core.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.until[key]; ok && now.Before(until) {
		return false, nil
	}
	l.until[key] = now.Add(window)

	// drop expired keys
	for k, until := range l.until {
		if !now.Before(until) {
			delete(l.until, k)
		}
	}
	return true, nil
}
