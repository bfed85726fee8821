package match

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorPattern  = regexp.MustCompile(`[._\-]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	bracketPattern    = regexp.MustCompile(`[\[\(\{][^\]\)\}]*[\]\)\}]`)
	punctPattern      = regexp.MustCompile(`[!?,:;'"]+`)

	// diacriticFolder strips combining marks after NFD decomposition, so
	// "Amélie" and "Amelie" normalize identically.
	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// stopwords are dropped by the stripped-query fallback. Articles only;
// aggressive lists destroy short titles.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {},
}

// Normalizer produces canonical query forms and ordered fallback variants
// from raw filename-derived titles. Zero value is ready to use.
type Normalizer struct{}

// Normalize canonicalizes a raw title: separators to spaces, bracketed
// release tags removed, diacritics folded, punctuation dropped, whitespace
// collapsed, lowercased.
func (Normalizer) Normalize(raw string) string {
	s := bracketPattern.ReplaceAllString(raw, " ")
	s = separatorPattern.ReplaceAllString(s, " ")
	s = foldDiacritics(s)
	s = punctPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Variants returns the first-pass query forms in preference order, starting
// with the full normalized title. Duplicates are removed while preserving
// order.
func (n Normalizer) Variants(raw string) []string {
	base := n.Normalize(raw)
	if base == "" {
		return nil
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, 3)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(base)
	add(strings.TrimPrefix(base, "the "))
	// Subtitle split happens on the raw form; normalization drops colons.
	if idx := strings.Index(raw, ":"); idx > 0 {
		add(n.Normalize(raw[:idx]))
	}
	return out
}

// StopwordStripped removes articles from the normalized title. It returns
// false when fewer than two tokens would remain, since over-stripped
// queries match everything.
func (n Normalizer) StopwordStripped(raw string) (string, bool) {
	base := n.Normalize(raw)
	tokens := strings.Fields(base)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		kept = append(kept, tok)
	}
	if len(kept) < 2 || len(kept) == len(tokens) {
		return "", false
	}
	return strings.Join(kept, " "), true
}

// WithYear appends the year to the normalized title. Returns false when no
// year hint exists.
func (n Normalizer) WithYear(raw string, year int) (string, bool) {
	if year <= 0 {
		return "", false
	}
	base := n.Normalize(raw)
	if base == "" {
		return "", false
	}
	return fmt.Sprintf("%s %d", base, year), true
}

// FirstTokens truncates the normalized title to its first count tokens.
// Returns false when the title is not longer than count tokens, since the
// truncation would change nothing.
func (n Normalizer) FirstTokens(raw string, count int) (string, bool) {
	base := n.Normalize(raw)
	tokens := strings.Fields(base)
	if count < 1 || len(tokens) <= count {
		return "", false
	}
	return strings.Join(tokens[:count], " "), true
}

func foldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return folded
}
