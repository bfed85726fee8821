package match

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// originalTitlePenalty discounts matches against the original-language
// title, so a localized exact match always beats an original-title one.
const originalTitlePenalty = 0.85

// TitleScorer compares the file title against the candidate's display and
// original titles using normalized Levenshtein similarity.
type TitleScorer struct {
	weight float64
	norm   Normalizer
}

func NewTitleScorer(weight float64) *TitleScorer {
	return &TitleScorer{weight: weight}
}

func (s *TitleScorer) Name() string    { return "title" }
func (s *TitleScorer) Weight() float64 { return s.weight }

func (s *TitleScorer) Score(hint FileHint, cand Candidate) (float64, string) {
	fileTitle := s.norm.Normalize(hint.Title)
	if fileTitle == "" {
		return 0, "empty file title"
	}

	display := s.norm.Normalize(cand.Title)
	best := titleSimilarity(fileTitle, display)
	reason := fmt.Sprintf("similarity %.2f vs %q", best, cand.Title)

	if original := s.norm.Normalize(cand.OriginalTitle); original != "" && original != display {
		if sim := titleSimilarity(fileTitle, original) * originalTitlePenalty; sim > best {
			best = sim
			reason = fmt.Sprintf("similarity %.2f vs original title %q", best, cand.OriginalTitle)
		}
	}
	return best, reason
}

// titleSimilarity is 1 minus the normalized Levenshtein distance between
// two already-normalized titles. Identical strings score 1.
func titleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	sim := 1 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

// YearScorer compares the file's year hint against the candidate's date
// year. Distance is symmetric; a year outside 1900-2100 on either side, or
// a candidate without a parsable date, scores zero.
type YearScorer struct {
	weight    float64
	tolerance int
}

func NewYearScorer(weight float64) *YearScorer {
	return &YearScorer{weight: weight, tolerance: 1}
}

func (s *YearScorer) Name() string    { return "year" }
func (s *YearScorer) Weight() float64 { return s.weight }

func (s *YearScorer) Score(hint FileHint, cand Candidate) (float64, string) {
	if hint.Year < 1900 || hint.Year > 2100 {
		return 0, "no usable year hint"
	}
	candYear := cand.Year()
	if candYear == 0 {
		return 0, "candidate has no date"
	}
	if candYear < 1900 || candYear > 2100 {
		return 0, fmt.Sprintf("candidate year %d out of range", candYear)
	}

	diff := hint.Year - candYear
	if diff < 0 {
		diff = -diff
	}
	if diff > s.tolerance+1 {
		return 0, fmt.Sprintf("year %d vs %d, off by %d", hint.Year, candYear, diff)
	}
	score := 1 - float64(diff)/float64(s.tolerance+1)
	return score, fmt.Sprintf("year %d vs %d", hint.Year, candYear)
}

// MediaTypeScorer rewards candidates whose kind matches the file hint.
// Files without a kind hint score neutral for every candidate.
type MediaTypeScorer struct {
	weight float64
}

func NewMediaTypeScorer(weight float64) *MediaTypeScorer {
	return &MediaTypeScorer{weight: weight}
}

func (s *MediaTypeScorer) Name() string    { return "media_type" }
func (s *MediaTypeScorer) Weight() float64 { return s.weight }

func (s *MediaTypeScorer) Score(hint FileHint, cand Candidate) (float64, string) {
	if hint.Kind == "" {
		return 0.5, "no media kind hint"
	}
	if hint.Kind == cand.Kind {
		return 1, fmt.Sprintf("kind %s matches", cand.Kind)
	}
	return 0, fmt.Sprintf("kind %s does not match hint %s", cand.Kind, hint.Kind)
}
