package httpapi

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window counter per key (client IP for token
// issuance). Expired windows are swept opportunistically whenever a new
// window opens, so the map cannot grow unbounded.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	interval time.Duration

	now func() time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:  make(map[string]*window),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.sweepLocked(now)
		rl.windows[key] = &window{count: 1, resetAt: now.Add(rl.interval)}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}
