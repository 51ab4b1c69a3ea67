// Package redislimiter is a Redis-backed sliding-window rate limiter for
// multi-node deployments. Windows are ZSETs of request timestamps.
package redislimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	memorylimiter "github.com/PaulFidika/subkit/ratelimit/memory"
)

const keyPrefix = "subkit:rl:"

// Limiter shares window state across instances through Redis.
type Limiter struct {
	rdb    *redis.Client
	limits map[string]memorylimiter.Limit
}

func New(rdb *redis.Client, limits map[string]memorylimiter.Limit) *Limiter {
	if limits == nil {
		limits = memorylimiter.DefaultLimits()
	}
	return &Limiter{rdb: rdb, limits: limits}
}

func (l *Limiter) limitFor(bucket string) memorylimiter.Limit {
	if v, ok := l.limits[bucket]; ok {
		return v
	}
	if v, ok := l.limits["default"]; ok {
		return v
	}
	return memorylimiter.Limit{Limit: 100, Window: time.Minute}
}

// AllowNamed implements ginutil.RateLimiter. The add/prune/count sequence
// runs in one pipeline; an over-limit addition is removed again so denied
// attempts do not extend the window.
func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	if l == nil || l.rdb == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	lim := l.limitFor(bucket)
	now := time.Now().UnixMilli()
	cutoff := now - lim.Window.Milliseconds()
	k := keyPrefix + key + ":" + bucket

	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now), Member: now})
	pipe.ZRemRangeByScore(ctx, k, "0", fmt.Sprintf("%d", cutoff))
	countCmd := pipe.ZCard(ctx, k)
	pipe.Expire(ctx, k, lim.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	count, err := countCmd.Result()
	if err != nil {
		return false, err
	}
	if count > int64(lim.Limit) {
		l.rdb.ZRem(ctx, k, now)
		return false, nil
	}
	return true, nil
}
