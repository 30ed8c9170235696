// Package ratelimit throttles requests per caller key. LocalLimiter keeps token buckets in process;
// RedisLimiter shares fixed-window counters between instances.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// LocalLimiter is a per-key token bucket refilled at requests per window, bursting up to requests.
type LocalLimiter struct {
	visitors sync.Map
	limit    rate.Limit
	burst    int
	idle     time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewLocalLimiter starts a limiter and its janitor. Call Close to stop the janitor.
func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	if requests < 1 {
		requests = 1
	}

	l := &LocalLimiter{
		limit: rate.Every(window / time.Duration(requests)),
		burst: requests,
		idle:  window * 5,
		stop:  make(chan struct{}),
	}
	go l.janitor()

	return l
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	v, ok := l.visitors.Load(key)
	if !ok {
		v, _ = l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.limit, l.burst)})
	}

	vi := v.(*visitor)
	vi.lastSeen.Store(time.Now().UnixNano())

	return vi.limiter.Allow(), nil
}

// Close stops the janitor goroutine.
func (l *LocalLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *LocalLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.evictIdle(now)
		}
	}
}

func (l *LocalLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-l.idle).UnixNano()
	l.visitors.Range(func(k, v any) bool {
		if v.(*visitor).lastSeen.Load() < cutoff {
			l.visitors.Delete(k)
		}
		return true
	})
}

// RedisLimiter counts requests per key in fixed windows stored in Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: requests, window: window}
}

// Allow counts the request and starts the window on the first one. INCR and EXPIRE NX run in one
// MULTI/EXEC, so a counter always carries a TTL and cannot lock a caller out past its window.
// EXPIRE NX needs Redis 7 or later.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	var count *redis.IntCmd
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	}); err != nil {
		return false, err
	}

	return count.Val() <= int64(l.limit), nil
}
