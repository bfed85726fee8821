package tmdb

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultRetryAfter is used when a 429 carries no parsable Retry-After.
const defaultRetryAfter = 5 * time.Second

// parseRetryAfter resolves a Retry-After header value to a wait duration.
// The header is either an integer number of seconds or an HTTP-date; an
// unparsable value falls back to defaultRetryAfter. Past dates resolve to
// zero, never negative.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultRetryAfter
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if target, err := http.ParseTime(value); err == nil {
		wait := target.Sub(now)
		if wait < 0 {
			return 0
		}
		return wait
	}

	return defaultRetryAfter
}
