package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jellymatch",
		Short: "Resolve media filenames against the TMDB catalog",
		Long: `JellyMatch resolves parsed media filenames to canonical TMDB records
with confidence scoring.

Features:
  - Rate-limited, circuit-breaking TMDB client that survives outages
  - Query normalization with automatic fallback searches
  - Weighted confidence scoring with a per-component evidence trail
  - Persistent result cache that keeps serving while TMDB is down`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/jellymatch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
