// Package ratelimit provides per-client sliding window request limiting.
package ratelimit

import (
	"context"
	"time"
)

// Store records request timestamps and decides admission for one client key
type Store interface {
	// Allow records a request at now and reports whether it fits in the window
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error)
}

// Limiter applies a fixed limit and window over a Store
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a limiter admitting limit requests per window per client
func NewLimiter(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether the client may issue another request
func (l *Limiter) Allow(ctx context.Context, client string) (bool, error) {
	return l.store.Allow(ctx, client, l.limit, l.window, l.now())
}

// Limit returns the number of requests admitted per window
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the sliding window length
func (l *Limiter) Window() time.Duration {
	return l.window
}
