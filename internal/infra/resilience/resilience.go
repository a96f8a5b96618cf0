// Package resilience wraps the portal's calls to the Supabase backend with
// retry, circuit-breaking, and concurrency limiting. Reads retry; writes do
// not, they only pass through the breaker.
package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes the retry and bulkhead behaviour. Values come from the
// environment via the config package.
type Config struct {
	// MaxRetries is the number of attempts after the first call.
	MaxRetries int
	// InitialBackoff is the wait before the first retry; later waits double.
	InitialBackoff time.Duration
	// MaxConcurrency caps simultaneous storage uploads.
	MaxConcurrency int
}

// RetryWithBackoff calls fn until it succeeds, the attempts run out, or ctx
// is cancelled. Each wait doubles and carries jitter so parallel
// session refreshes do not hammer the backend in lockstep.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error
	wait := cfg.InitialBackoff
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == cfg.MaxRetries {
			break
		}

		sleep := wait
		if half := int64(wait / 2); half > 0 {
			sleep += time.Duration(rand.Int63n(half))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		wait *= 2
	}
	return lastErr
}

// NewCircuitBreaker builds the breaker shared by every table and storage
// call to the named backend. A run of three straight failures, or a mostly
// failing window, opens it; the half-open state admits two requests.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 8 && ratio >= 0.5
		},
	})
}

// Bulkhead bounds how many callers may hold a resource at once. The portal
// applies it to storage uploads, which stream whole files.
type Bulkhead struct {
	slots chan struct{}
}

// NewBulkhead builds a bulkhead with size slots. Size must be at least 1.
func NewBulkhead(size int) *Bulkhead {
	return &Bulkhead{slots: make(chan struct{}, size)}
}

// Acquire takes a slot, waiting until one frees or ctx ends.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (b *Bulkhead) Release() {
	<-b.slots
}
