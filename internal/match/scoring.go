package match

import (
	"fmt"
)

// Scorer evaluates one signal between a file hint and a candidate,
// returning a score in [0,1] and a human-readable reason.
type Scorer interface {
	Name() string
	Weight() float64
	Score(hint FileHint, cand Candidate) (float64, string)
}

// ScoringEngine combines component scorers into a single confidence score
// with a per-component evidence trail.
type ScoringEngine struct {
	scorers          []Scorer
	normalizeWeights bool
}

// EngineOption configures a ScoringEngine.
type EngineOption func(*ScoringEngine)

// WithWeightNormalization divides the combined score by the weight sum, so
// weights express relative importance rather than absolute contribution.
func WithWeightNormalization() EngineOption {
	return func(e *ScoringEngine) {
		e.normalizeWeights = true
	}
}

// NewScoringEngine validates and assembles the scorer set. At least one
// scorer is required; every weight must be positive and names unique.
func NewScoringEngine(scorers []Scorer, opts ...EngineOption) (*ScoringEngine, error) {
	if len(scorers) == 0 {
		return nil, fmt.Errorf("scoring engine requires at least one scorer")
	}
	names := make(map[string]struct{}, len(scorers))
	for _, s := range scorers {
		if s.Weight() <= 0 {
			return nil, fmt.Errorf("scorer %q has non-positive weight %v", s.Name(), s.Weight())
		}
		if _, dup := names[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate scorer name %q", s.Name())
		}
		names[s.Name()] = struct{}{}
	}

	e := &ScoringEngine{scorers: scorers}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// DefaultScoringEngine builds the standard title/year/media-type scorer set.
func DefaultScoringEngine() *ScoringEngine {
	engine, err := NewScoringEngine([]Scorer{
		NewTitleScorer(0.6),
		NewYearScorer(0.2),
		NewMediaTypeScorer(0.2),
	})
	if err != nil {
		panic(err) // defaults are statically valid
	}
	return engine
}

// Evaluate scores one candidate against the hint. Each component score is
// clamped to [0,1] before weighting; a panicking scorer contributes zero.
// The combined score is clamped to [0,1] as well.
func (e *ScoringEngine) Evaluate(hint FileHint, cand Candidate) (float64, Evidence) {
	components := make([]ScoreResult, 0, len(e.scorers))
	total := 0.0
	weightSum := 0.0

	for _, scorer := range e.scorers {
		score, reason := e.runScorer(scorer, hint, cand)
		score = clamp01(score)
		components = append(components, ScoreResult{
			Component: scorer.Name(),
			Score:     score,
			Weight:    scorer.Weight(),
			Reason:    reason,
		})
		total += score * scorer.Weight()
		weightSum += scorer.Weight()
	}

	if e.normalizeWeights && weightSum > 0 {
		total /= weightSum
	}
	total = clamp01(total)

	return total, Evidence{
		FileTitle:    hint.Title,
		MatchedTitle: cand.Title,
		MatchedID:    cand.ID,
		MediaKind:    cand.Kind,
		TotalScore:   total,
		Components:   components,
	}
}

func (e *ScoringEngine) runScorer(scorer Scorer, hint FileHint, cand Candidate) (score float64, reason string) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
			reason = fmt.Sprintf("scorer failed: %v", r)
		}
	}()
	return scorer.Score(hint, cand)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
