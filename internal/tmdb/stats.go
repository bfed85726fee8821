package tmdb

// Stats is a point-in-time snapshot of the client's admission-control and
// circuit state, merged for observability surfaces.
type Stats struct {
	TokensAvailable  float64 `json:"tokens_available"`
	Capacity         float64 `json:"capacity"`
	RefillRate       float64 `json:"refill_rate"`
	ActiveRequests   int     `json:"active_requests"`
	AvailableSlots   int     `json:"available_slots"`
	ConcurrencyLimit int     `json:"concurrency_limit"`
	State            string  `json:"state"`
	RecentErrors     int     `json:"recent_errors"`
	RecentSuccesses  int     `json:"recent_successes"`
	ErrorRatePercent float64 `json:"error_rate_percent"`
}

// Stats returns the current snapshot.
func (c *Client) Stats() Stats {
	return Stats{
		TokensAvailable:  c.bucket.Available(),
		Capacity:         c.bucket.Capacity(),
		RefillRate:       c.bucket.RefillRate(),
		ActiveRequests:   c.sem.Active(),
		AvailableSlots:   c.sem.Available(),
		ConcurrencyLimit: c.sem.Limit(),
		State:            c.breaker.State().String(),
		RecentErrors:     c.breaker.RecentErrors(),
		RecentSuccesses:  c.breaker.RecentSuccesses(),
		ErrorRatePercent: c.breaker.ErrorRatePercent(),
	}
}
