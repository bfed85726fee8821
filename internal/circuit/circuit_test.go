package circuit

import (
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		WindowSize:            20,
		ErrorThresholdPercent: 50,
		MinSamples:            10,
		Cooldown:              50 * time.Millisecond,
		ProbeSuccesses:        3,
	}
}

func TestBreaker_InitialState(t *testing.T) {
	b := New(testConfig())

	if b.State() != StateNormal {
		t.Errorf("expected initial state normal, got %v", b.State())
	}
	if !b.Allow() {
		t.Error("expected Allow() to return true in normal state")
	}
}

func TestBreaker_RateLimitEntersThrottled(t *testing.T) {
	b := New(testConfig())

	b.RecordError(true, "rate limited")

	if b.State() != StateThrottled {
		t.Errorf("expected throttled after 429, got %v", b.State())
	}
	if !b.Allow() {
		t.Error("expected Allow() to return true while throttled")
	}
}

func TestBreaker_ThrottledRecoversOnSuccess(t *testing.T) {
	b := New(testConfig())

	b.RecordError(true, "rate limited")
	b.RecordSuccess()

	if b.State() != StateNormal {
		t.Errorf("expected normal after success with no further errors, got %v", b.State())
	}
}

func TestBreaker_ThrottledStaysOnErrorThenSuccess(t *testing.T) {
	b := New(testConfig())

	b.RecordError(true, "rate limited")
	b.RecordError(false, "timeout")
	b.RecordSuccess()

	if b.State() != StateThrottled {
		t.Errorf("expected still throttled after an error since throttle entry, got %v", b.State())
	}
}

func TestBreaker_ThrottledRecoversAfterErrorsAgeOut(t *testing.T) {
	cfg := testConfig()
	cfg.WindowSize = 5
	cfg.MinSamples = 6
	b := New(cfg)

	b.RecordError(true, "rate limited")
	b.RecordError(false, "timeout")
	for i := 0; i < 4; i++ {
		b.RecordSuccess()
	}
	if b.State() != StateThrottled {
		t.Fatalf("expected throttled while errors remain in the window, got %v", b.State())
	}

	b.RecordSuccess()
	if got := b.RecentErrors(); got != 0 {
		t.Fatalf("expected all errors evicted from the window, got %d", got)
	}
	if b.State() != StateNormal {
		t.Errorf("expected normal once the window holds only successes, got %v", b.State())
	}
}

func TestBreaker_DegradesOnErrorRate(t *testing.T) {
	b := New(testConfig())

	// 5 successes then 5 errors: 50% over 10 samples meets the threshold.
	for i := 0; i < 5; i++ {
		b.RecordSuccess()
	}
	for i := 0; i < 5; i++ {
		b.RecordError(false, "connection refused")
	}

	if b.State() != StateDegraded {
		t.Fatalf("expected degraded at 50%% error rate, got %v", b.State())
	}
	if b.Allow() {
		t.Error("expected Allow() to return false during cooldown")
	}
}

func TestBreaker_NoDegradeBelowMinSamples(t *testing.T) {
	b := New(testConfig())

	// 100% errors but only 5 samples, below the minimum of 10.
	for i := 0; i < 5; i++ {
		b.RecordError(false, "connection refused")
	}

	if b.State() == StateDegraded {
		t.Error("expected breaker to stay out of degraded below min samples")
	}
}

func TestBreaker_ProbeRecovery(t *testing.T) {
	cfg := testConfig()
	b := New(cfg)

	for i := 0; i < 5; i++ {
		b.RecordSuccess()
	}
	for i := 0; i < 5; i++ {
		b.RecordError(false, "connection refused")
	}
	if b.State() != StateDegraded {
		t.Fatalf("expected degraded, got %v", b.State())
	}

	time.Sleep(cfg.Cooldown + 10*time.Millisecond)

	if !b.Allow() {
		t.Fatal("expected probationary request after cooldown")
	}

	b.RecordSuccess()
	b.RecordSuccess()
	if b.State() != StateDegraded {
		t.Fatalf("expected degraded until enough probes succeed, got %v", b.State())
	}
	b.RecordSuccess()

	if b.State() != StateNormal {
		t.Errorf("expected normal after %d consecutive probe successes, got %v", cfg.ProbeSuccesses, b.State())
	}
}

func TestBreaker_FailedProbeRestartsCooldown(t *testing.T) {
	cfg := testConfig()
	b := New(cfg)

	for i := 0; i < 10; i++ {
		b.RecordError(false, "connection refused")
	}
	if b.State() != StateDegraded {
		t.Fatalf("expected degraded, got %v", b.State())
	}

	time.Sleep(cfg.Cooldown + 10*time.Millisecond)
	if !b.Allow() {
		t.Fatal("expected probe after cooldown")
	}

	b.RecordError(false, "still failing")

	if b.Allow() {
		t.Error("expected Allow() to return false right after a failed probe")
	}
	if b.State() != StateDegraded {
		t.Errorf("expected degraded after failed probe, got %v", b.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := New(testConfig())

	for i := 0; i < 10; i++ {
		b.RecordError(false, "connection refused")
	}
	if b.State() != StateDegraded {
		t.Fatalf("expected degraded, got %v", b.State())
	}

	b.Reset()

	if b.State() != StateNormal {
		t.Errorf("expected normal after Reset, got %v", b.State())
	}
	if !b.Allow() {
		t.Error("expected Allow() after Reset")
	}
	if b.RecentErrors() != 0 {
		t.Errorf("expected empty window after Reset, got %d errors", b.RecentErrors())
	}
	if b.LastError() != "" {
		t.Errorf("expected cleared last error after Reset, got %q", b.LastError())
	}
}

func TestBreaker_ErrorRate(t *testing.T) {
	b := New(testConfig())

	for i := 0; i < 3; i++ {
		b.RecordSuccess()
	}
	b.RecordError(false, "boom")

	if got := b.ErrorRatePercent(); got != 25 {
		t.Errorf("expected 25%% error rate, got %v", got)
	}
	if got := b.RecentErrors(); got != 1 {
		t.Errorf("expected 1 recent error, got %d", got)
	}
	if got := b.RecentSuccesses(); got != 3 {
		t.Errorf("expected 3 recent successes, got %d", got)
	}
	if got := b.LastError(); got != "boom" {
		t.Errorf("expected last error %q, got %q", "boom", got)
	}
}

func TestBreaker_WindowEviction(t *testing.T) {
	cfg := testConfig()
	cfg.WindowSize = 4
	cfg.MinSamples = 4
	b := New(cfg)

	b.RecordError(false, "old")
	b.RecordError(false, "old")
	for i := 0; i < 4; i++ {
		b.RecordSuccess()
	}

	if got := b.RecentErrors(); got != 0 {
		t.Errorf("expected old errors evicted from the window, got %d", got)
	}
	if got := b.ErrorRatePercent(); got != 0 {
		t.Errorf("expected 0%% error rate after eviction, got %v", got)
	}
}
