// Package tmdb provides the resilient client for the external catalog API:
// token-bucket admission, bounded concurrency, circuit breaking, and
// retry/backoff with Retry-After handling around a raw transport.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/rs/zerolog"

	"github.com/Nomadcxx/jellymatch/internal/circuit"
	"github.com/Nomadcxx/jellymatch/internal/ratelimit"
)

// Config tunes the resilient client.
type Config struct {
	// RatePerSecond is the steady-state request rate; Burst is the token
	// bucket capacity.
	RatePerSecond float64
	Burst         int
	// ConcurrencyLimit bounds simultaneous in-flight requests.
	ConcurrencyLimit int
	// MaxRetries is the total number of attempts per call.
	MaxRetries int
	// RetryBaseDelay is the exponential backoff base for network/5xx errors.
	RetryBaseDelay time.Duration
	// Circuit tunes the breaker.
	Circuit circuit.Config
}

// DefaultConfig returns client defaults sized for the TMDB public limits.
func DefaultConfig() Config {
	return Config{
		RatePerSecond:    35,
		Burst:            35,
		ConcurrencyLimit: 4,
		MaxRetries:       3,
		RetryBaseDelay:   500 * time.Millisecond,
		Circuit:          circuit.DefaultConfig(),
	}
}

// Client composes the admission-control primitives around a Transport.
// Safe for concurrent use; all state is shared client-wide.
type Client struct {
	transport  Transport
	bucket     *ratelimit.TokenBucket
	sem        *ratelimit.Semaphore
	breaker    *circuit.Breaker
	maxRetries uint
	baseDelay  time.Duration
	log        zerolog.Logger
}

// NewClient creates a resilient client over the given transport.
func NewClient(transport Transport, cfg Config, log zerolog.Logger) *Client {
	def := DefaultConfig()
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = def.RatePerSecond
	}
	if cfg.Burst < 1 {
		cfg.Burst = def.Burst
	}
	if cfg.ConcurrencyLimit < 1 {
		cfg.ConcurrencyLimit = def.ConcurrencyLimit
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = def.RetryBaseDelay
	}

	return &Client{
		transport:  transport,
		bucket:     ratelimit.NewTokenBucket(cfg.RatePerSecond, cfg.Burst),
		sem:        ratelimit.NewSemaphore(cfg.ConcurrencyLimit),
		breaker:    circuit.New(cfg.Circuit),
		maxRetries: uint(cfg.MaxRetries),
		baseDelay:  cfg.RetryBaseDelay,
		log:        log.With().Str("component", "tmdb").Logger(),
	}
}

// Call performs one logical request with retries. Degraded circuit state
// fails fast before any limiter or network involvement. 429 responses
// honor Retry-After; network and 5xx failures back off exponentially.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	var payload json.RawMessage
	attempts := 0

	err := retry.Do(
		func() error {
			attempts++

			if !c.breaker.Allow() {
				return ErrServiceDegraded
			}
			if err := c.sem.Acquire(ctx); err != nil {
				return err
			}
			defer c.sem.Release()
			if err := c.bucket.Acquire(ctx); err != nil {
				return err
			}

			raw, err := c.transport.Do(ctx, endpoint, params)
			if err != nil {
				var rl *RateLimitedError
				if errors.As(err, &rl) {
					c.breaker.RecordError(true, err.Error())
					return err
				}
				c.breaker.RecordError(false, err.Error())
				return err
			}

			c.breaker.RecordSuccess()
			payload = raw
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, ErrServiceDegraded) {
				return false
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			// 4xx rejections are permanent; retrying cannot help.
			var st *StatusError
			return !errors.As(err, &st)
		}),
		retry.Delay(c.baseDelay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			var rl *RateLimitedError
			if errors.As(err, &rl) {
				if rl.RetryAfter > 0 {
					return rl.RetryAfter
				}
				return defaultRetryAfter
			}
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug().
				Str("endpoint", endpoint).
				Uint("attempt", n+1).
				Err(err).
				Msg("retrying request")
		}),
	)

	if err != nil {
		if errors.Is(err, ErrServiceDegraded) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		c.log.Warn().Str("endpoint", endpoint).Int("attempts", attempts).Err(err).Msg("request failed")
		return nil, &RequestError{Endpoint: endpoint, Attempts: attempts, Err: err}
	}

	return payload, nil
}

// ResetCircuit administratively closes the breaker.
func (c *Client) ResetCircuit() {
	c.breaker.Reset()
}

// CircuitState exposes the breaker mode for callers deciding on
// cache-only fallback.
func (c *Client) CircuitState() circuit.State {
	return c.breaker.State()
}
