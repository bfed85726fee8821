// Package circuit tracks the health of the upstream catalog API and gates
// outbound requests into normal, throttled, and degraded modes.
package circuit

import (
	"sync"
	"time"
)

// State is the current operating mode of the breaker.
type State int

const (
	// StateNormal lets requests proceed without restriction.
	StateNormal State = iota
	// StateThrottled indicates a recent rate-limit response; requests still
	// proceed but the client applies extra backoff.
	StateThrottled
	// StateDegraded rejects requests immediately; callers fall back to
	// cache-only paths.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateThrottled:
		return "throttled"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Config tunes the breaker.
type Config struct {
	// WindowSize is the number of recent outcomes kept for the error rate.
	WindowSize int
	// ErrorThresholdPercent trips the breaker into degraded mode when the
	// trailing error rate meets or exceeds it.
	ErrorThresholdPercent float64
	// MinSamples is the minimum number of recorded outcomes before the
	// error rate can trip the breaker.
	MinSamples int
	// Cooldown is how long degraded mode rejects everything before
	// probationary requests are allowed through.
	Cooldown time.Duration
	// ProbeSuccesses is the number of consecutive successful probes needed
	// to close the breaker back to normal.
	ProbeSuccesses int
}

// DefaultConfig returns the breaker defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize:            20,
		ErrorThresholdPercent: 50,
		MinSamples:            10,
		Cooldown:              30 * time.Second,
		ProbeSuccesses:        3,
	}
}

// Breaker is the state machine. RecordSuccess and RecordError are the only
// mutators; all query methods are side-effect free. It lives for the whole
// client process and is reset only by Reset or a sustained probe run.
type Breaker struct {
	mu sync.Mutex

	state  State
	window []bool // true = success; ring buffer
	next   int
	filled int

	openedAt       time.Time
	probing        bool
	probeSuccesses int
	throttleErrors int // errors recorded since entering throttled mode
	lastError      string

	cfg Config
}

// New creates a breaker in the normal state.
func New(cfg Config) *Breaker {
	if cfg.WindowSize < 1 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	if cfg.ErrorThresholdPercent <= 0 {
		cfg.ErrorThresholdPercent = DefaultConfig().ErrorThresholdPercent
	}
	if cfg.MinSamples < 1 {
		cfg.MinSamples = DefaultConfig().MinSamples
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultConfig().Cooldown
	}
	if cfg.ProbeSuccesses < 1 {
		cfg.ProbeSuccesses = DefaultConfig().ProbeSuccesses
	}
	return &Breaker{
		state:  StateNormal,
		window: make([]bool, cfg.WindowSize),
		cfg:    cfg,
	}
}

// Allow reports whether a request may proceed. While degraded and inside
// the cooldown it returns false; after the cooldown, requests pass as
// probationary probes until enough succeed to close the breaker.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateDegraded {
		return true
	}
	if time.Since(b.openedAt) >= b.cfg.Cooldown {
		b.probing = true
		return true
	}
	return false
}

// RecordSuccess records one successful outcome.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pushLocked(true)

	switch b.state {
	case StateDegraded:
		if b.probing {
			b.probeSuccesses++
			if b.probeSuccesses >= b.cfg.ProbeSuccesses {
				b.state = StateNormal
				b.probing = false
				b.probeSuccesses = 0
				b.lastError = ""
			}
		}
	case StateThrottled:
		// Recover once no error has followed the 429, or once every error
		// has aged out of the window.
		if b.throttleErrors == 0 || b.recentErrorsLocked() == 0 {
			b.state = StateNormal
			b.throttleErrors = 0
		}
	}
}

// RecordError records one failed outcome. rateLimited marks an HTTP 429,
// which moves a normal breaker into throttled mode.
func (b *Breaker) RecordError(rateLimited bool, errMsg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pushLocked(false)
	b.lastError = errMsg

	if b.state == StateDegraded {
		if b.probing {
			// Failed probe: restart the cooldown.
			b.probing = false
			b.probeSuccesses = 0
			b.openedAt = time.Now()
		}
		return
	}

	if rateLimited && b.state == StateNormal {
		b.state = StateThrottled
		b.throttleErrors = 0
	} else if b.state == StateThrottled {
		b.throttleErrors++
	}

	if b.filled >= b.cfg.MinSamples && b.errorRateLocked() >= b.cfg.ErrorThresholdPercent {
		b.state = StateDegraded
		b.openedAt = time.Now()
		b.probing = false
		b.probeSuccesses = 0
	}
}

// Reset administratively returns the breaker to normal and clears history.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateNormal
	b.next = 0
	b.filled = 0
	b.probing = false
	b.probeSuccesses = 0
	b.throttleErrors = 0
	b.lastError = ""
}

// State returns the current mode.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ErrorRatePercent returns the trailing-window error rate in percent.
func (b *Breaker) ErrorRatePercent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorRateLocked()
}

// RecentErrors returns the number of failures in the window.
func (b *Breaker) RecentErrors() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recentErrorsLocked()
}

// RecentSuccesses returns the number of successes in the window.
func (b *Breaker) RecentSuccesses() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filled - b.recentErrorsLocked()
}

// LastError returns the message of the most recent recorded error.
func (b *Breaker) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

func (b *Breaker) pushLocked(success bool) {
	b.window[b.next] = success
	b.next = (b.next + 1) % len(b.window)
	if b.filled < len(b.window) {
		b.filled++
	}
}

func (b *Breaker) recentErrorsLocked() int {
	errs := 0
	for i := 0; i < b.filled; i++ {
		if !b.window[i] {
			errs++
		}
	}
	return errs
}

func (b *Breaker) errorRateLocked() float64 {
	if b.filled == 0 {
		return 0
	}
	return float64(b.recentErrorsLocked()) / float64(b.filled) * 100
}
