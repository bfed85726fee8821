package match

import (
	"encoding/json"
	"strings"
)

// searchPage is the catalog search response envelope.
type searchPage struct {
	Page         int               `json:"page"`
	Results      []json.RawMessage `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// searchItem is the strict decode target for one result item. TV and movie
// payloads use different field names for the title and date, so both sets
// are present and resolved after decoding.
type searchItem struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	OriginalName  string  `json:"original_name"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	FirstAirDate  string  `json:"first_air_date"`
	ReleaseDate   string  `json:"release_date"`
	Popularity    float64 `json:"popularity"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int64   `json:"vote_count"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	GenreIDs      []int64 `json:"genre_ids"`
}

// NormalizeSearchPayload converts a raw search response into candidates of
// the given kind. Items that cannot be decoded strictly are retried through
// a loose attribute-bag pass; items still missing an id or any title are
// dropped rather than failing the page.
func NormalizeSearchPayload(payload json.RawMessage, kind MediaKind) []Candidate {
	var page searchPage
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil
	}

	candidates := make([]Candidate, 0, len(page.Results))
	for _, raw := range page.Results {
		var item searchItem
		if err := json.Unmarshal(raw, &item); err != nil {
			if loose, ok := normalizeLoose(raw, kind); ok {
				candidates = append(candidates, loose)
			}
			continue
		}
		if cand, ok := candidateFromItem(item, kind); ok {
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

// NormalizeDetailsPayload converts a raw details response into a single
// candidate, or false when the record is unusable.
func NormalizeDetailsPayload(payload json.RawMessage, kind MediaKind) (Candidate, bool) {
	var item searchItem
	if err := json.Unmarshal(payload, &item); err != nil {
		return normalizeLoose(payload, kind)
	}
	return candidateFromItem(item, kind)
}

func candidateFromItem(item searchItem, kind MediaKind) (Candidate, bool) {
	cand := Candidate{
		ID:            item.ID,
		Kind:          kind,
		Title:         firstNonEmpty(item.Name, item.Title),
		OriginalTitle: firstNonEmpty(item.OriginalName, item.OriginalTitle),
		Date:          firstNonEmpty(item.FirstAirDate, item.ReleaseDate),
		Popularity:    item.Popularity,
		VoteAverage:   item.VoteAverage,
		VoteCount:     item.VoteCount,
		Overview:      item.Overview,
		PosterPath:    item.PosterPath,
		BackdropPath:  item.BackdropPath,
		GenreIDs:      item.GenreIDs,
	}
	if cand.ID <= 0 || cand.Title == "" {
		return Candidate{}, false
	}
	return cand, true
}

// normalizeLoose is the fallback for payloads with unexpected field types.
// It treats the item as an attribute bag and coerces the fields it can,
// requiring only an id and a title.
func normalizeLoose(raw json.RawMessage, kind MediaKind) (Candidate, bool) {
	var bag map[string]any
	if err := json.Unmarshal(raw, &bag); err != nil {
		return Candidate{}, false
	}

	id := coerceInt64(bag["id"])
	title := firstNonEmpty(coerceString(bag["name"]), coerceString(bag["title"]))
	if id <= 0 || title == "" {
		return Candidate{}, false
	}

	return Candidate{
		ID:            id,
		Kind:          kind,
		Title:         title,
		OriginalTitle: firstNonEmpty(coerceString(bag["original_name"]), coerceString(bag["original_title"])),
		Date:          firstNonEmpty(coerceString(bag["first_air_date"]), coerceString(bag["release_date"])),
		Popularity:    coerceFloat(bag["popularity"]),
		VoteAverage:   coerceFloat(bag["vote_average"]),
		VoteCount:     coerceInt64(bag["vote_count"]),
		Overview:      coerceString(bag["overview"]),
		PosterPath:    coerceString(bag["poster_path"]),
		BackdropPath:  coerceString(bag["backdrop_path"]),
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		return ""
	}
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func coerceInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
