package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucket_StartsFull(t *testing.T) {
	b := NewTokenBucket(10, 5)

	if got := b.Available(); got != 5 {
		t.Errorf("expected 5 tokens at start, got %v", got)
	}
	if got := b.Capacity(); got != 5 {
		t.Errorf("expected capacity 5, got %v", got)
	}
	if got := b.RefillRate(); got != 10 {
		t.Errorf("expected refill rate 10, got %v", got)
	}
}

func TestTokenBucket_BurstThenWait(t *testing.T) {
	b := NewTokenBucket(100, 3)

	for i := 0; i < 3; i++ {
		if wait := b.Reserve(); wait != 0 {
			t.Fatalf("expected token %d available without wait, got %v", i, wait)
		}
	}

	wait := b.Reserve()
	if wait <= 0 {
		t.Error("expected a wait once the burst is spent")
	}
	if wait > 20*time.Millisecond {
		t.Errorf("expected wait around 10ms at 100/s, got %v", wait)
	}
}

func TestTokenBucket_ReserveDoesNotOverdraw(t *testing.T) {
	b := NewTokenBucket(1, 1)

	if wait := b.Reserve(); wait != 0 {
		t.Fatalf("expected first token, got wait %v", wait)
	}

	// Repeated failed reservations must not drive the balance negative.
	b.Reserve()
	b.Reserve()
	b.Reserve()

	if got := b.Available(); got < 0 {
		t.Errorf("available went negative: %v", got)
	}
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	b := NewTokenBucket(1000, 2)

	time.Sleep(20 * time.Millisecond)

	if got := b.Available(); got > 2 {
		t.Errorf("available %v exceeds capacity 2", got)
	}
}

func TestTokenBucket_AcquireBlocksForRefill(t *testing.T) {
	b := NewTokenBucket(50, 1)
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	start := time.Now()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	elapsed := time.Since(start)

	// One token at 50/s takes 20ms to accrue.
	if elapsed < 15*time.Millisecond {
		t.Errorf("expected acquire to wait about 20ms, returned after %v", elapsed)
	}
}

func TestTokenBucket_AcquireHonorsContext(t *testing.T) {
	b := NewTokenBucket(0.1, 1)
	b.Reserve() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Acquire(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestTokenBucket_ClampsInvalidConfig(t *testing.T) {
	b := NewTokenBucket(-5, 0)

	if got := b.Capacity(); got != 1 {
		t.Errorf("expected capacity clamped to 1, got %v", got)
	}
	if got := b.RefillRate(); got != 1 {
		t.Errorf("expected rate clamped to 1, got %v", got)
	}
}
