package echoapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_rateLimiter_allowAt(t *testing.T) {
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, 2)

	assert.True(t, rl.allowAt("1.1.1.1", start))
	assert.True(t, rl.allowAt("1.1.1.1", start))
	assert.False(t, rl.allowAt("1.1.1.1", start))
	assert.True(t, rl.allowAt("2.2.2.2", start))
	assert.True(t, rl.allowAt("1.1.1.1", start.Add(time.Second)))

	// the first call swept; idle buckets stay until the next sweep is due
	later := start.Add(limiterTTL / 2)
	assert.True(t, rl.allowAt("3.3.3.3", later))
	assert.Len(t, rl.limiters, 3)
	assert.Equal(t, start, rl.lastSweep)

	swept := start.Add(limiterTTL + 2*time.Second)
	assert.True(t, rl.allowAt("3.3.3.3", swept))
	assert.Len(t, rl.limiters, 1)
	assert.Equal(t, swept, rl.lastSweep)
}
