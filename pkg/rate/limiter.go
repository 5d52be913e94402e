package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxIdleKeys bounds how many per-key limiters are retained before limiters
// that have fully refilled are pruned
const maxIdleKeys = 10_000

// Limiter limits operations based on a provided key, such as the fee payer of
// a submitted instruction.
type Limiter interface {
	Allow(key string) (bool, error)
}

type localRateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter returns an in memory limiter allowing limit operations
// per second for each key, with bursts up to burst operations. A burst below 1
// defaults to the limit rounded down, with a minimum of 1.
func NewLocalRateLimiter(limit rate.Limit, burst int) Limiter {
	if burst < 1 {
		burst = max(int(limit), 1)
	}

	return &localRateLimiter{
		limit:    limit,
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow implements Limiter.Allow.
func (l *localRateLimiter) Allow(key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxIdleKeys {
			l.pruneLocked(now)
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.AllowN(now, 1), nil
}

// pruneLocked drops limiters that are back at full burst, since a fresh
// limiter behaves identically.
func (l *localRateLimiter) pruneLocked(now time.Time) {
	for key, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}

// NoLimiter never limits operations
type NoLimiter struct{}

// Allow implements Limiter.Allow.
func (*NoLimiter) Allow(string) (bool, error) {
	return true, nil
}
