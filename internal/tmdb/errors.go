package tmdb

import (
	"errors"
	"fmt"
	"time"
)

// ErrServiceDegraded is returned without touching the network while the
// circuit breaker is open. Callers are expected to fall back to cached
// results or report the service as unavailable.
var ErrServiceDegraded = errors.New("metadata service degraded")

// RateLimitedError reports an HTTP 429 with the delay the server asked for.
// It is consumed by the retry loop and only escapes when retries exhaust.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ServerError reports a 5xx response; transient and retried with backoff.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// StatusError reports a non-retryable client-side status such as 404.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request rejected (status %d)", e.StatusCode)
}

// RequestError wraps the last underlying failure after retry exhaustion.
type RequestError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
