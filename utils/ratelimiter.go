package utils

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between outgoing requests. The
// pipeline processes properties sequentially, but a degraded month chunk can
// fan out into dozens of per-day calls; the limiter keeps that burst from
// hammering the remote calculator.
type RateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	minGap   time.Duration
}

// NewRateLimiter creates a RateLimiter with the given minimum gap in
// milliseconds between calls.
func NewRateLimiter(gapMs int) *RateLimiter {
	return &RateLimiter{minGap: time.Duration(gapMs) * time.Millisecond}
}

// Wait blocks until the minimum gap since the previous call has elapsed, or
// until ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastCall)
	if elapsed < r.minGap {
		select {
		case <-time.After(r.minGap - elapsed):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.lastCall = time.Now()
	return nil
}
