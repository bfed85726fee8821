package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/jellymatch/internal/match"
)

func newMatchCmd() *cobra.Command {
	var (
		year       int
		season     int
		episode    int
		kind       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "match <title>",
		Short: "Resolve a title against the TMDB catalog",
		Long: `Resolve a parsed filename title to a TMDB record with confidence scoring.

Examples:
  jellymatch match "Attack on Titan"
  jellymatch match "Breaking.Bad" --kind tv
  jellymatch match "Heat" --year 1995 --kind movie --json
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hint := match.FileHint{
				Title:   strings.Join(args, " "),
				Year:    year,
				Season:  season,
				Episode: episode,
			}
			switch strings.ToLower(kind) {
			case "tv":
				hint.Kind = match.KindTV
			case "movie":
				hint.Kind = match.KindMovie
			case "":
			default:
				return fmt.Errorf("invalid --kind %q: must be tv or movie", kind)
			}
			return runMatch(cmd, hint, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year hint from the filename")
	cmd.Flags().IntVar(&season, "season", 0, "Season number hint")
	cmd.Flags().IntVar(&episode, "episode", 0, "Episode number hint")
	cmd.Flags().StringVar(&kind, "kind", "", "Media kind hint: tv or movie")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full result as JSON")

	return cmd
}

func runMatch(cmd *cobra.Command, hint match.FileHint, jsonOutput bool) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.engine.Match(cmd.Context(), hint)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.ID == nil {
		fmt.Printf("No match found for %q (fallback attempts: %d)\n", hint.Title, result.FallbackAttempts)
		return nil
	}

	fmt.Printf("Matched: %s\n", *result.Title)
	fmt.Printf("  TMDB ID:    %d\n", *result.ID)
	fmt.Printf("  Kind:       %s\n", result.Kind)
	if result.Date != "" {
		fmt.Printf("  Date:       %s\n", result.Date)
	}
	fmt.Printf("  Confidence: %.2f (%s)\n", result.Confidence, result.Tier)
	fmt.Printf("  Query:      %q\n", result.Query)
	if result.FallbackAttempts > 0 {
		fmt.Printf("  Fallbacks:  %d\n", result.FallbackAttempts)
	}
	if result.Evidence != nil && verbose {
		fmt.Println("  Evidence:")
		for _, comp := range result.Evidence.Components {
			fmt.Printf("    %-10s %.2f (weight %.2f) %s\n", comp.Component, comp.Score, comp.Weight, comp.Reason)
		}
	}
	return nil
}
