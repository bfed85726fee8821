package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ValidationError reports unusable match input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Store is the persistent result cache surface. Implementations own their
// expiry policy; the engine treats a miss and an error identically on read.
type Store interface {
	Get(key string) (Result, bool, error)
	Set(key string, res Result) error
}

// unknownEvidence is the placeholder evidence attached to no-match results
// so the audit trail never carries nulls.
func unknownEvidence(fileTitle string) *Evidence {
	return &Evidence{
		FileTitle:    fileTitle,
		MatchedTitle: "Unknown",
		MatchedID:    1,
		TotalScore:   0,
		Components:   []ScoreResult{},
	}
}

// Engine orchestrates strategies, query fallbacks, scoring, and caching
// into a single Match operation. Safe for concurrent use.
type Engine struct {
	strategies []Strategy
	scoring    *ScoringEngine
	norm       Normalizer
	cfg        Config
	cache      *resultCache
	store      Store
	language   string
	log        zerolog.Logger

	totalQueries      atomic.Int64
	cacheHits         atomic.Int64
	successfulMatches atomic.Int64
	fallbacksUsed     atomic.Int64
}

// EngineOpt configures an Engine.
type EngineOpt func(*Engine)

// WithStore attaches a persistent result store, consulted after the
// in-memory cache and written through on every resolved match.
func WithStore(store Store) EngineOpt {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLanguage records the catalog language for cache-key scoping, so
// results fetched under one language are never served for another.
func WithLanguage(language string) EngineOpt {
	return func(e *Engine) {
		e.language = strings.ToLower(strings.TrimSpace(language))
	}
}

// NewEngine assembles a matching engine. Strategies are tried in the order
// given unless the file hint's kind promotes one.
func NewEngine(strategies []Strategy, scoring *ScoringEngine, cfg Config, log zerolog.Logger, opts ...EngineOpt) (*Engine, error) {
	if len(strategies) == 0 {
		return nil, errors.New("engine requires at least one strategy")
	}
	if scoring == nil {
		scoring = DefaultScoringEngine()
	}
	def := DefaultConfig()
	if cfg.MinConfidence <= 0 || cfg.MinConfidence > 1 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.MaxFallbackAttempts < 0 {
		cfg.MaxFallbackAttempts = def.MaxFallbackAttempts
	}
	if cfg.TopK < 1 {
		cfg.TopK = def.TopK
	}
	if cfg.EarlyExitConfidence <= 0 || cfg.EarlyExitConfidence > 1 {
		cfg.EarlyExitConfidence = def.EarlyExitConfidence
	}

	e := &Engine{
		strategies: strategies,
		scoring:    scoring,
		cfg:        cfg,
		cache:      newResultCache(),
		language:   "en-us",
		log:        log.With().Str("component", "match").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Match resolves a file hint to a catalog record. A no-match outcome is a
// successful Result with a nil ID and TierNone, not an error. Errors are
// reserved for invalid input, context cancellation, and a degraded service
// with no cached answer.
func (e *Engine) Match(ctx context.Context, hint FileHint) (Result, error) {
	if strings.TrimSpace(hint.Title) == "" {
		return Result{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	e.totalQueries.Add(1)
	key := e.cacheKey(hint)

	if e.cfg.CacheResults {
		if res, ok := e.cache.get(key); ok {
			e.cacheHits.Add(1)
			return res, nil
		}
		if e.store != nil {
			if res, ok, err := e.store.Get(key); err == nil && ok {
				e.cacheHits.Add(1)
				e.cache.set(key, res)
				return res, nil
			}
		}
	}

	// A degraded service surfaces here untouched; the caches above already
	// served anything we had.
	res, err := e.resolve(ctx, hint)
	if err != nil {
		return Result{}, err
	}

	if res.ID != nil {
		e.successfulMatches.Add(1)
	}
	e.fallbacksUsed.Add(int64(res.FallbackAttempts))

	if e.cfg.CacheResults {
		e.cache.set(key, res)
		if e.store != nil {
			if err := e.store.Set(key, res); err != nil {
				e.log.Warn().Err(err).Str("key", key).Msg("persist match result")
			}
		}
	}
	return res, nil
}

func (e *Engine) resolve(ctx context.Context, hint FileHint) (Result, error) {
	strategies := e.orderedStrategies(hint)
	year := 0
	if e.cfg.UseYearHints {
		year = hint.Year
	}

	var best Result
	bestScore := -1.0

	consider := func(query string, cands []Candidate) {
		limit := len(cands)
		if limit > e.cfg.TopK {
			limit = e.cfg.TopK
		}
		for _, cand := range cands[:limit] {
			score, evidence := e.scoring.Evaluate(hint, cand)
			if score > bestScore {
				bestScore = score
				best = resultFromCandidate(cand, score, query, &evidence)
			}
		}
	}

	// First pass: normalized variants across strategies.
	queries := []string{e.norm.Normalize(hint.Title)}
	if e.cfg.GenerateVariants {
		queries = e.norm.Variants(hint.Title)
	}
	for _, query := range queries {
		if query == "" {
			continue
		}
		for _, strat := range strategies {
			cands, err := strat.Search(ctx, query, year)
			if err != nil {
				return Result{}, err
			}
			consider(query, cands)
		}
		if bestScore >= e.cfg.EarlyExitConfidence {
			break
		}
	}

	// Fallback passes: each generator is one attempt, and the chain stops
	// at the first one that yields any candidates.
	fallbackAttempts := 0
	if bestScore < e.cfg.MinConfidence {
		for _, fb := range e.fallbackQueries(hint) {
			if fallbackAttempts >= e.cfg.MaxFallbackAttempts {
				break
			}
			fallbackAttempts++

			found := false
			for _, strat := range strategies {
				cands, err := strat.Search(ctx, fb, year)
				if err != nil {
					return Result{}, err
				}
				if len(cands) > 0 {
					found = true
				}
				consider(fb, cands)
			}
			if found {
				break
			}
		}
	}

	if bestScore < 0 || TierFromConfidence(bestScore) == TierNone {
		return Result{
			Confidence:       0,
			Tier:             TierNone,
			Query:            e.norm.Normalize(hint.Title),
			FallbackAttempts: fallbackAttempts,
			Evidence:         unknownEvidence(hint.Title),
		}, nil
	}

	best.FallbackAttempts = fallbackAttempts
	return best, nil
}

// fallbackQueries returns the applicable fallback queries in escalation
// order: stopword-stripped, year-qualified, then token-truncated.
func (e *Engine) fallbackQueries(hint FileHint) []string {
	out := make([]string, 0, 3)
	if q, ok := e.norm.StopwordStripped(hint.Title); ok {
		out = append(out, q)
	}
	if q, ok := e.norm.WithYear(hint.Title, hint.Year); ok {
		out = append(out, q)
	}
	if q, ok := e.norm.FirstTokens(hint.Title, 3); ok {
		out = append(out, q)
	}
	return out
}

// orderedStrategies promotes the strategy matching the hint's kind. An
// episode marker implies TV when no kind is given.
func (e *Engine) orderedStrategies(hint FileHint) []Strategy {
	kind := hint.Kind
	if kind == "" && (hint.Season > 0 || hint.Episode > 0) {
		kind = KindTV
	}
	if kind == "" {
		return e.strategies
	}

	ordered := make([]Strategy, 0, len(e.strategies))
	for _, s := range e.strategies {
		if s.Kind() == kind {
			ordered = append(ordered, s)
		}
	}
	for _, s := range e.strategies {
		if s.Kind() != kind {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

func (e *Engine) cacheKey(hint FileHint) string {
	return strings.ToLower(fmt.Sprintf("%s|%d|%s", e.norm.Normalize(hint.Title), hint.Year, e.language))
}

func resultFromCandidate(cand Candidate, score float64, query string, evidence *Evidence) Result {
	id := cand.ID
	title := cand.Title
	return Result{
		ID:            &id,
		Title:         &title,
		OriginalTitle: cand.OriginalTitle,
		Overview:      cand.Overview,
		Date:          cand.Date,
		Kind:          cand.Kind,
		Popularity:    cand.Popularity,
		VoteAverage:   cand.VoteAverage,
		VoteCount:     cand.VoteCount,
		Confidence:    score,
		Tier:          TierFromConfidence(score),
		Query:         query,
		Evidence:      evidence,
	}
}

// ClearCache drops the in-memory result cache.
func (e *Engine) ClearCache() {
	e.cache.clear()
}

// Stats is the engine's cumulative counters snapshot.
type Stats struct {
	TotalQueries        int64   `json:"total_queries"`
	CacheHits           int64   `json:"cache_hits"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	SuccessfulMatches   int64   `json:"successful_matches"`
	SuccessRate         float64 `json:"success_rate"`
	FallbackAttempts    int64   `json:"fallback_attempts"`
	AvgFallbackAttempts float64 `json:"avg_fallback_attempts"`
	CacheSize           int     `json:"cache_size"`
}

// Stats returns the current counters.
func (e *Engine) Stats() Stats {
	total := e.totalQueries.Load()
	hits := e.cacheHits.Load()
	matches := e.successfulMatches.Load()
	fallbacks := e.fallbacksUsed.Load()

	s := Stats{
		TotalQueries:      total,
		CacheHits:         hits,
		SuccessfulMatches: matches,
		FallbackAttempts:  fallbacks,
		CacheSize:         e.cache.len(),
	}
	if total > 0 {
		s.CacheHitRate = float64(hits) / float64(total)
		s.SuccessRate = float64(matches) / float64(total)
		s.AvgFallbackAttempts = float64(fallbacks) / float64(total)
	}
	return s
}
