package sync

import (
	"crypto/ed25519"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)
	other := newRing(64, 200)

	for i := 0; i < 256; i++ {
		account, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		stripe := r.shard(account)
		assert.True(t, stripe >= 0 && stripe < 64)
		for j := 0; j < 16; j++ {
			assert.Equal(t, stripe, r.shard(account))
		}
		assert.Equal(t, stripe, other.shard(account))
	}
}

func TestRing_Distribution(t *testing.T) {
	stripes := 5
	iterations := 500000
	marginOfError := 0.25
	expectedFrequency := iterations / stripes

	r := newRing(uint(stripes), 200)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		hits[r.shard([]byte(fmt.Sprintf("account%d", i)))]++
	}

	assert.Len(t, hits, stripes)
	for _, hitCount := range hits {
		assert.True(t, math.Abs(float64(hitCount-expectedFrequency)) <= marginOfError*float64(expectedFrequency))
	}
}

func TestRing_ZeroStripes(t *testing.T) {
	r := newRing(0, 0)
	assert.Equal(t, 0, r.shard([]byte("account")))
}
