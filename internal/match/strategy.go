package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Nomadcxx/jellymatch/internal/tmdb"
)

// Caller is the resilient-client surface a strategy needs.
type Caller interface {
	Call(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error)
}

// Strategy searches one media kind. Search returns an error only when the
// service is degraded or the context ended; every other failure is treated
// as "no candidates from this attempt" so the engine can keep falling back.
type Strategy interface {
	Search(ctx context.Context, query string, year int) ([]Candidate, error)
	Details(ctx context.Context, id int64) (Candidate, error)
	Kind() MediaKind
}

type searchStrategy struct {
	client    Caller
	kind      MediaKind
	endpoint  string
	detail    string
	yearParam string
	log       zerolog.Logger
}

// NewTVStrategy searches the TV catalog.
func NewTVStrategy(client Caller, log zerolog.Logger) Strategy {
	return &searchStrategy{
		client:    client,
		kind:      KindTV,
		endpoint:  "/search/tv",
		detail:    "/tv",
		yearParam: "first_air_date_year",
		log:       log.With().Str("strategy", string(KindTV)).Logger(),
	}
}

// NewMovieStrategy searches the movie catalog.
func NewMovieStrategy(client Caller, log zerolog.Logger) Strategy {
	return &searchStrategy{
		client:    client,
		kind:      KindMovie,
		endpoint:  "/search/movie",
		detail:    "/movie",
		yearParam: "primary_release_year",
		log:       log.With().Str("strategy", string(KindMovie)).Logger(),
	}
}

func (s *searchStrategy) Kind() MediaKind {
	return s.kind
}

func (s *searchStrategy) Search(ctx context.Context, query string, year int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set(s.yearParam, strconv.Itoa(year))
	}

	payload, err := s.client.Call(ctx, s.endpoint, params)
	if err != nil {
		if errors.Is(err, tmdb.ErrServiceDegraded) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.log.Debug().Str("query", query).Err(err).Msg("search attempt failed")
		return nil, nil
	}

	return NormalizeSearchPayload(payload, s.kind), nil
}

func (s *searchStrategy) Details(ctx context.Context, id int64) (Candidate, error) {
	payload, err := s.client.Call(ctx, fmt.Sprintf("%s/%d", s.detail, id), url.Values{})
	if err != nil {
		return Candidate{}, err
	}
	cand, ok := NormalizeDetailsPayload(payload, s.kind)
	if !ok {
		return Candidate{}, fmt.Errorf("details for %s %d: unusable payload", s.kind, id)
	}
	return cand, nil
}
