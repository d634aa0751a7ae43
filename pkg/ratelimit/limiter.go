package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request or ctx is done
	Wait(ctx context.Context) error
	// Reset restores the limiter to its initial, full state
	Reset()
}

// Pacer spaces requests evenly at a fixed rate with a small burst allowance
type Pacer struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	every   time.Duration
	burst   int
}

// NewPacer creates a limiter that allows one request every interval, with
// up to burst requests let through back to back.
func NewPacer(every time.Duration, burst int) *Pacer {
	if burst < 1 {
		burst = 1
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(every), burst),
		every:   every,
		burst:   burst,
	}
}

// PerMinute returns a Limiter for the given number of requests per minute.
// A non-positive rate disables limiting.
func PerMinute(requests int) Limiter {
	if requests <= 0 {
		return Unlimited{}
	}
	return NewPacer(time.Minute/time.Duration(requests), 1)
}

// Allow checks if a request can proceed without waiting
func (p *Pacer) Allow() bool {
	return p.current().Allow()
}

// Wait blocks until a request is allowed
func (p *Pacer) Wait(ctx context.Context) error {
	return p.current().Wait(ctx)
}

// Reset discards any consumed tokens
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiter = rate.NewLimiter(rate.Every(p.every), p.burst)
}

// Interval returns the spacing between requests
func (p *Pacer) Interval() time.Duration {
	return p.every
}

func (p *Pacer) current() *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.limiter
}

// Unlimited never delays a request
type Unlimited struct{}

func (Unlimited) Allow() bool { return true }

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

func (Unlimited) Reset() {}
