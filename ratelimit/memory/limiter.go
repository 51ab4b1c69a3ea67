// Package memorylimiter is an in-process sliding-window rate limiter. It is
// the single-node fallback when no Redis address is configured.
package memorylimiter

import (
	"fmt"
	"sync"
	"time"

	"github.com/PaulFidika/subkit/adapters/ginutil"
)

// Limit defines the max request count per window for one bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// DefaultLimits covers the entitlement endpoints. The activation buckets
// are tight since each account legitimately succeeds at most once; notify
// is the chattiest surface.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		ginutil.RLTrialActivate:   {Limit: 10, Window: time.Minute},
		ginutil.RLPremiumActivate: {Limit: 10, Window: time.Minute},
		ginutil.RLPremiumRecheck:  {Limit: 20, Window: time.Minute},
		ginutil.RLNotifySend:      {Limit: 60, Window: time.Minute},
		"default":                 {Limit: 100, Window: time.Minute},
	}
}

// Limiter tracks request timestamps per bucket:key pair.
type Limiter struct {
	mu     sync.Mutex
	limits map[string]Limit
	seen   map[string][]int64 // unix ms, oldest first
}

func New(limits map[string]Limit) *Limiter {
	if limits == nil {
		limits = DefaultLimits()
	}
	return &Limiter{limits: limits, seen: make(map[string][]int64)}
}

func (l *Limiter) limitFor(bucket string) Limit {
	if v, ok := l.limits[bucket]; ok {
		return v
	}
	if v, ok := l.limits["default"]; ok {
		return v
	}
	return Limit{Limit: 100, Window: time.Minute}
}

// AllowNamed implements ginutil.RateLimiter. Expired entries are pruned on
// each call and denied attempts are not recorded.
func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	if bucket == "" || key == "" {
		return false, fmt.Errorf("bucket and key required")
	}
	lim := l.limitFor(bucket)
	nowMs := time.Now().UnixMilli()
	cutoff := nowMs - lim.Window.Milliseconds()
	k := key + ":" + bucket

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.seen[k]
	drop := 0
	for drop < len(ts) && ts[drop] < cutoff {
		drop++
	}
	ts = ts[drop:]

	if len(ts) >= lim.Limit {
		l.seen[k] = ts
		return false, nil
	}
	l.seen[k] = append(ts, nowMs)
	return true, nil
}
