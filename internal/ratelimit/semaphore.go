package ratelimit

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Semaphore bounds the number of simultaneous in-flight requests. It wraps
// a weighted semaphore with an active-request counter for observability.
// Every Acquire must be paired with a Release on all exit paths.
type Semaphore struct {
	sem    *semaphore.Weighted
	limit  int64
	active atomic.Int64
}

// NewSemaphore creates a semaphore admitting at most limit holders.
func NewSemaphore(limit int) *Semaphore {
	if limit < 1 {
		limit = 1
	}
	return &Semaphore{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: int64(limit),
	}
}

// Acquire blocks until a slot is free or the context is cancelled.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	s.active.Add(1)
	return nil
}

// Release frees a slot previously acquired.
func (s *Semaphore) Release() {
	s.active.Add(-1)
	s.sem.Release(1)
}

// Active returns the number of requests currently holding a slot.
func (s *Semaphore) Active() int {
	return int(s.active.Load())
}

// Available returns the number of free slots.
func (s *Semaphore) Available() int {
	return int(s.limit - s.active.Load())
}

// Limit returns the configured concurrency limit.
func (s *Semaphore) Limit() int {
	return int(s.limit)
}
