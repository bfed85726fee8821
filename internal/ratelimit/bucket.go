// Package ratelimit provides the admission-control primitives shared by
// outbound catalog API requests: a token bucket for steady-state rate and a
// counting semaphore for bounded in-flight concurrency.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket admits requests at a steady rate. Tokens refill continuously
// at refillRate tokens/second up to capacity, computed lazily from elapsed
// time; there is no background timer. The bucket never rejects a request,
// it only delays it.
type TokenBucket struct {
	mu         sync.Mutex
	available  float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a bucket that refills at ratePerSecond tokens/sec
// with the given burst capacity. A burst below 1 is clamped to 1 so a
// single request can always eventually proceed.
func NewTokenBucket(ratePerSecond float64, burst int) *TokenBucket {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		available:  float64(burst),
		capacity:   float64(burst),
		refillRate: ratePerSecond,
		lastRefill: time.Now(),
	}
}

// refillLocked credits tokens for the time elapsed since the last refill.
// Caller must hold mu. Invariant: 0 <= available <= capacity.
func (b *TokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.available += elapsed * b.refillRate
	if b.available > b.capacity {
		b.available = b.capacity
	}
	b.lastRefill = now
}

// Reserve consumes a token if one is available and returns zero. Otherwise
// it returns the duration after which one token will have accrued, without
// consuming anything; the caller is expected to wait and try again.
func (b *TokenBucket) Reserve() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(time.Now())
	if b.available >= 1 {
		b.available--
		return 0
	}
	deficit := 1 - b.available
	return time.Duration(deficit / b.refillRate * float64(time.Second))
}

// Acquire blocks until a token is consumed or the context is cancelled.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	for {
		wait := b.Reserve()
		if wait == 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Available returns the current token count after a lazy refill.
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked(time.Now())
	return b.available
}

// Capacity returns the maximum token count.
func (b *TokenBucket) Capacity() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity
}

// RefillRate returns the refill rate in tokens per second.
func (b *TokenBucket) RefillRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refillRate
}
