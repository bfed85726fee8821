// Package metrics exposes client and engine counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Nomadcxx/jellymatch/internal/match"
	"github.com/Nomadcxx/jellymatch/internal/tmdb"
)

// Registry wraps a dedicated prometheus registry so the exposition surface
// carries only jellymatch series plus the standard Go runtime collectors.
type Registry struct {
	reg *prometheus.Registry
}

// New registers gauges backed by the client and engine stat snapshots.
// Either source may be nil, e.g. the match CLI has no long-lived engine.
func New(client *tmdb.Client, engine *match.Engine) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if client != nil {
		registerClientGauges(reg, client)
	}
	if engine != nil {
		registerEngineGauges(reg, engine)
	}
	return &Registry{reg: reg}
}

// Prometheus returns the underlying registry for the /metrics handler.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

func registerClientGauges(reg *prometheus.Registry, client *tmdb.Client) {
	gauge := func(name, help string, value func(tmdb.Stats) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "jellymatch",
			Subsystem: "client",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return value(client.Stats())
		})
	}

	reg.MustRegister(
		gauge("tokens_available", "Rate limiter tokens currently available.", func(s tmdb.Stats) float64 {
			return s.TokensAvailable
		}),
		gauge("active_requests", "Requests currently in flight.", func(s tmdb.Stats) float64 {
			return float64(s.ActiveRequests)
		}),
		gauge("error_rate_percent", "Error percentage over the circuit window.", func(s tmdb.Stats) float64 {
			return s.ErrorRatePercent
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "jellymatch",
			Subsystem: "client",
			Name:      "circuit_state",
			Help:      "Circuit state: 0 normal, 1 throttled, 2 degraded.",
		}, func() float64 {
			return float64(client.CircuitState())
		}),
	)
}

func registerEngineGauges(reg *prometheus.Registry, engine *match.Engine) {
	gauge := func(name, help string, value func(match.Stats) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "jellymatch",
			Subsystem: "engine",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return value(engine.Stats())
		})
	}

	reg.MustRegister(
		gauge("queries_total", "Match queries processed.", func(s match.Stats) float64 {
			return float64(s.TotalQueries)
		}),
		gauge("cache_hits_total", "Match queries served from cache.", func(s match.Stats) float64 {
			return float64(s.CacheHits)
		}),
		gauge("successful_matches_total", "Match queries that resolved to a record.", func(s match.Stats) float64 {
			return float64(s.SuccessfulMatches)
		}),
		gauge("fallback_attempts_total", "Fallback searches issued.", func(s match.Stats) float64 {
			return float64(s.FallbackAttempts)
		}),
		gauge("cache_size", "Entries in the in-memory result cache.", func(s match.Stats) float64 {
			return float64(s.CacheSize)
		}),
	)
}
