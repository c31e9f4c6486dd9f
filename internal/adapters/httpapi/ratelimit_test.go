package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int, interval time.Duration) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(limit, interval)
	clock := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl, _ := newTestLimiter(2, time.Minute)

	assert.True(t, rl.Allow("ip1"))
	assert.True(t, rl.Allow("ip1"))
	assert.False(t, rl.Allow("ip1"))
	assert.True(t, rl.Allow("ip2"), "keys are independent")
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)

	assert.True(t, rl.Allow("ip1"))
	assert.False(t, rl.Allow("ip1"))

	*clock = clock.Add(61 * time.Second)
	assert.True(t, rl.Allow("ip1"))
}

func TestRateLimiterSweepsExpiredWindows(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)

	rl.Allow("ip1")
	rl.Allow("ip2")
	*clock = clock.Add(2 * time.Minute)

	// opening a fresh window sweeps the stale ones
	rl.Allow("ip3")
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.windows, 1)
}
