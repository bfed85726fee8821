// Package api serves the match and stats endpoints over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Nomadcxx/jellymatch/internal/match"
	"github.com/Nomadcxx/jellymatch/internal/metrics"
	"github.com/Nomadcxx/jellymatch/internal/tmdb"
)

// Server implements the API
type Server struct {
	engine  *match.Engine
	client  *tmdb.Client
	metrics *metrics.Registry
	log     zerolog.Logger
}

// NewServer creates a new API server
func NewServer(engine *match.Engine, client *tmdb.Client, reg *metrics.Registry, log zerolog.Logger) *Server {
	return &Server{
		engine:  engine,
		client:  client,
		metrics: reg,
		log:     log.With().Str("component", "api").Logger(),
	}
}

// Handler returns the HTTP handler with middleware and routes.
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			s.metrics.Prometheus(), promhttp.HandlerOpts{},
		))
	}
	r.Mount("/api/v1", s.apiRouter())

	return r
}

// apiRouter returns a router with API routes
func (s *Server) apiRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/match", s.handleMatch)
	r.Get("/stats", s.handleStats)
	r.Post("/circuit/reset", s.handleCircuitReset)

	return r
}
