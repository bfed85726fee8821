// Package match resolves parsed media filename hints to canonical catalog
// records: search strategies per media kind, query-variant fallback,
// weighted confidence scoring with evidence, and the orchestrating engine.
package match

import (
	"strconv"
	"strings"
)

// MediaKind is the catalog media type.
type MediaKind string

const (
	KindTV    MediaKind = "tv"
	KindMovie MediaKind = "movie"
)

// FileHint is the parsed-filename input produced by the external scanning
// pipeline. Title is required; everything else is optional.
type FileHint struct {
	Title   string    `json:"title"`
	Year    int       `json:"year,omitempty"`
	Season  int       `json:"season,omitempty"`
	Episode int       `json:"episode,omitempty"`
	Kind    MediaKind `json:"kind,omitempty"`
}

// Candidate is one external-catalog record, immutable once normalized from
// a search response item.
type Candidate struct {
	ID            int64     `json:"id"`
	Kind          MediaKind `json:"media_kind"`
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title,omitempty"`
	Date          string    `json:"date,omitempty"` // first-air or release date, ISO
	Popularity    float64   `json:"popularity,omitempty"`
	VoteAverage   float64   `json:"vote_average,omitempty"`
	VoteCount     int64     `json:"vote_count,omitempty"`
	Overview      string    `json:"overview,omitempty"`
	PosterPath    string    `json:"poster_path,omitempty"`
	BackdropPath  string    `json:"backdrop_path,omitempty"`
	GenreIDs      []int64   `json:"genre_ids,omitempty"`
}

// Year extracts the year from the candidate's date, or 0 when the date is
// absent or unparsable.
func (c Candidate) Year() int {
	date := strings.TrimSpace(c.Date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// ScoreResult is one component scorer's output.
type ScoreResult struct {
	Component string  `json:"component"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Reason    string  `json:"reason"`
}

// Evidence is the per-component breakdown for one candidate evaluation.
// It is retained for auditability and never drives control flow. Fields
// are always populated so downstream serialization never sees nulls.
type Evidence struct {
	FileTitle    string        `json:"file_title"`
	MatchedTitle string        `json:"matched_title"`
	MatchedID    int64         `json:"matched_id"`
	MediaKind    MediaKind     `json:"media_kind"`
	TotalScore   float64       `json:"total_score"`
	Components   []ScoreResult `json:"components"`
}

// Tier buckets a confidence score.
type Tier string

const (
	TierExact  Tier = "exact"
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
	TierNone   Tier = "none"
)

// TierFromConfidence maps a confidence score to its tier.
func TierFromConfidence(confidence float64) Tier {
	switch {
	case confidence >= 0.95:
		return TierExact
	case confidence >= 0.85:
		return TierHigh
	case confidence >= 0.70:
		return TierMedium
	case confidence >= 0.50:
		return TierLow
	default:
		return TierNone
	}
}

// Result is the terminal output of a match. A nil ID with TierNone means
// "no match found" and is a successful outcome, not an error.
type Result struct {
	ID               *int64    `json:"id"`
	Title            *string   `json:"title"`
	OriginalTitle    string    `json:"original_title,omitempty"`
	Overview         string    `json:"overview,omitempty"`
	Date             string    `json:"date,omitempty"`
	Kind             MediaKind `json:"media_kind,omitempty"`
	Popularity       float64   `json:"popularity,omitempty"`
	VoteAverage      float64   `json:"vote_average,omitempty"`
	VoteCount        int64     `json:"vote_count,omitempty"`
	Confidence       float64   `json:"confidence"`
	Tier             Tier      `json:"tier"`
	Query            string    `json:"query"`
	FallbackAttempts int       `json:"fallback_attempts"`
	Evidence         *Evidence `json:"evidence,omitempty"`
}

// Config tunes the matching engine.
type Config struct {
	// MinConfidence accepts a match without invoking fallback strategies.
	MinConfidence float64 `json:"min_confidence"`
	// MaxFallbackAttempts bounds the fallback strategies tried per match.
	MaxFallbackAttempts int `json:"max_fallback_attempts"`
	// UseYearHints forwards the file year to the search endpoints.
	UseYearHints bool `json:"use_year_hints"`
	// GenerateVariants enables query-variant generation for the first pass.
	GenerateVariants bool `json:"generate_variants"`
	// CacheResults enables the in-memory result cache.
	CacheResults bool `json:"cache_results"`
	// TopK is the number of candidates scored per variant per strategy.
	TopK int `json:"top_k"`
	// EarlyExitConfidence stops the variant loop once reached.
	EarlyExitConfidence float64 `json:"early_exit_confidence"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MinConfidence:       0.7,
		MaxFallbackAttempts: 3,
		UseYearHints:        true,
		GenerateVariants:    true,
		CacheResults:        true,
		TopK:                5,
		EarlyExitConfidence: 0.9,
	}
}
