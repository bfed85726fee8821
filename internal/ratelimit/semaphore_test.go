package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSemaphore_BoundsConcurrency(t *testing.T) {
	const limit = 4
	const workers = 10

	s := NewSemaphore(limit)
	ctx := context.Background()

	var current atomic.Int64
	var highWater atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Acquire(ctx); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer s.Release()

			n := current.Add(1)
			for {
				peak := highWater.Load()
				if n <= peak || highWater.CompareAndSwap(peak, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	if peak := highWater.Load(); peak > limit {
		t.Errorf("observed %d concurrent holders, limit is %d", peak, limit)
	}
	if got := s.Active(); got != 0 {
		t.Errorf("expected 0 active after all releases, got %d", got)
	}
	if got := s.Available(); got != limit {
		t.Errorf("expected %d available after all releases, got %d", limit, got)
	}
}

func TestSemaphore_AcquireHonorsContext(t *testing.T) {
	s := NewSemaphore(1)

	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Acquire(ctx)
	if err == nil {
		s.Release()
		t.Fatal("expected second acquire to fail while the slot is held")
	}

	s.Release()
	if got := s.Active(); got != 0 {
		t.Errorf("expected 0 active, got %d", got)
	}
}

func TestSemaphore_ClampsInvalidLimit(t *testing.T) {
	s := NewSemaphore(0)

	if got := s.Limit(); got != 1 {
		t.Errorf("expected limit clamped to 1, got %d", got)
	}
}
