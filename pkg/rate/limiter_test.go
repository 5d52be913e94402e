package rate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func allowN(t *testing.T, l Limiter, key string, n int) (allowed int) {
	for i := 0; i < n; i++ {
		ok, err := l.Allow(key)
		require.NoError(t, err)
		if ok {
			allowed++
		}
	}
	return allowed
}

func TestNoLimiter(t *testing.T) {
	assert.Equal(t, 1000, allowN(t, &NoLimiter{}, "payer", 1000))
}

func TestLocalRateLimiter_PerKey(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(2), 0)

	assert.Equal(t, 2, allowN(t, l, "payerA", 3))
	assert.Equal(t, 2, allowN(t, l, "payerB", 3))
}

func TestLocalRateLimiter_Burst(t *testing.T) {
	assert.Equal(t, 3, allowN(t, NewLocalRateLimiter(rate.Limit(0.5), 3), "payer", 4))

	// Fractional limits still allow a single operation
	assert.Equal(t, 1, allowN(t, NewLocalRateLimiter(rate.Limit(0.5), 0), "payer", 2))
}

func TestLocalRateLimiter_Refill(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLocalRateLimiter(rate.Limit(1), 1).(*localRateLimiter)
	l.now = func() time.Time { return now }

	assert.Equal(t, 1, allowN(t, l, "payer", 2))

	now = now.Add(time.Second)
	assert.Equal(t, 1, allowN(t, l, "payer", 2))
}

func TestLocalRateLimiter_PrunesIdleKeys(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLocalRateLimiter(rate.Limit(1), 1).(*localRateLimiter)
	l.now = func() time.Time { return now }

	for i := 0; i < maxIdleKeys; i++ {
		allowN(t, l, fmt.Sprintf("payer%d", i), 1)
	}
	require.Len(t, l.limiters, maxIdleKeys)

	// Every limiter refills within a second, so the next new key prunes them all
	now = now.Add(time.Second)
	assert.Equal(t, 1, allowN(t, l, "latecomer", 1))
	assert.Len(t, l.limiters, 1)
}
