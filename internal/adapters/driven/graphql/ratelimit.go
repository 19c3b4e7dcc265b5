package graphql

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds).
const HeaderRetryAfter = "Retry-After"

// RateLimiter paces requests to one host.
// A token bucket spaces requests; a Retry-After from a 429 or 503 holds
// every request until the server's deadline.
type RateLimiter struct {
	mu         sync.Mutex
	bucket     *rate.Limiter
	retryAfter time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second.
// A non-positive rps disables the token bucket.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, 1),
		now:    time.Now,
	}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	until := r.retryAfter
	r.mu.Unlock()

	if d := until.Sub(r.now()); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// Observe records server back-pressure from a response.
func (r *RateLimiter) Observe(resp *http.Response) {
	if resp == nil {
		return
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return
	}
	v := resp.Header.Get(HeaderRetryAfter)
	if v == "" {
		return
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAfter = r.now().Add(time.Duration(seconds) * time.Second)
}

// HeldUntil returns the Retry-After deadline, zero when none is active.
func (r *RateLimiter) HeldUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retryAfter.Before(r.now()) {
		return time.Time{}
	}
	return r.retryAfter
}
