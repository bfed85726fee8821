package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellymatch/internal/api"
	"github.com/Nomadcxx/jellymatch/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var (
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server for external integrations.

Examples:
  jellymatch serve                  # Start on the configured address
  jellymatch serve --addr :9000     # Start on port 9000
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config)")

	return cmd
}

func runServe(addr string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if addr == "" {
		addr = a.cfg.Server.ListenAddr
	}

	reg := metrics.New(a.client, a.engine)
	server := api.NewServer(a.engine, a.client, reg, a.log)

	fmt.Printf("Starting JellyMatch API server on %s\n", addr)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /api/v1/match          - Resolve a title")
	fmt.Println("  GET  /api/v1/stats          - Client and engine stats")
	fmt.Println("  POST /api/v1/circuit/reset  - Close the circuit breaker")
	fmt.Println("  GET  /health                - Health check")
	fmt.Println("  GET  /metrics               - Prometheus metrics")

	return http.ListenAndServe(addr, server.Handler())
}
