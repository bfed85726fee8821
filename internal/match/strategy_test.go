package match

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/jellymatch/internal/tmdb"
)

type fakeCaller struct {
	payload   json.RawMessage
	err       error
	endpoint  string
	params    url.Values
	callCount int
}

func (f *fakeCaller) Call(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	f.callCount++
	f.endpoint = endpoint
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func TestTVStrategy_SearchParams(t *testing.T) {
	caller := &fakeCaller{payload: json.RawMessage(`{"results":[]}`)}
	strat := NewTVStrategy(caller, zerolog.Nop())

	_, err := strat.Search(context.Background(), "attack on titan", 2013)
	require.NoError(t, err)

	assert.Equal(t, "/search/tv", caller.endpoint)
	assert.Equal(t, "attack on titan", caller.params.Get("query"))
	assert.Equal(t, "2013", caller.params.Get("first_air_date_year"))
	assert.Equal(t, KindTV, strat.Kind())
}

func TestMovieStrategy_SearchParams(t *testing.T) {
	caller := &fakeCaller{payload: json.RawMessage(`{"results":[]}`)}
	strat := NewMovieStrategy(caller, zerolog.Nop())

	_, err := strat.Search(context.Background(), "heat", 1995)
	require.NoError(t, err)

	assert.Equal(t, "/search/movie", caller.endpoint)
	assert.Equal(t, "1995", caller.params.Get("primary_release_year"))
	assert.Equal(t, KindMovie, strat.Kind())
}

func TestStrategy_NoYearParamWithoutHint(t *testing.T) {
	caller := &fakeCaller{payload: json.RawMessage(`{"results":[]}`)}
	strat := NewTVStrategy(caller, zerolog.Nop())

	_, err := strat.Search(context.Background(), "severance", 0)
	require.NoError(t, err)
	assert.Empty(t, caller.params.Get("first_air_date_year"))
}

func TestStrategy_TransportFailureYieldsEmpty(t *testing.T) {
	caller := &fakeCaller{err: &tmdb.RequestError{Endpoint: "/search/tv", Attempts: 3, Err: errors.New("boom")}}
	strat := NewTVStrategy(caller, zerolog.Nop())

	cands, err := strat.Search(context.Background(), "severance", 0)
	assert.NoError(t, err, "non-degraded failures are swallowed so fallbacks can continue")
	assert.Empty(t, cands)
}

func TestStrategy_DegradedPropagates(t *testing.T) {
	caller := &fakeCaller{err: tmdb.ErrServiceDegraded}
	strat := NewTVStrategy(caller, zerolog.Nop())

	_, err := strat.Search(context.Background(), "severance", 0)
	assert.ErrorIs(t, err, tmdb.ErrServiceDegraded)
}

func TestStrategy_Details(t *testing.T) {
	caller := &fakeCaller{payload: json.RawMessage(`{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20"}`)}
	strat := NewTVStrategy(caller, zerolog.Nop())

	cand, err := strat.Details(context.Background(), 1396)
	require.NoError(t, err)
	assert.Equal(t, "/tv/1396", caller.endpoint)
	assert.Equal(t, int64(1396), cand.ID)
	assert.Equal(t, "Breaking Bad", cand.Title)
	assert.Equal(t, KindTV, cand.Kind)
}

func TestStrategy_DetailsError(t *testing.T) {
	caller := &fakeCaller{err: &tmdb.RequestError{Endpoint: "/tv/1", Attempts: 3, Err: errors.New("boom")}}
	strat := NewTVStrategy(caller, zerolog.Nop())

	_, err := strat.Details(context.Background(), 1)
	assert.Error(t, err, "details lookups surface transport failures directly")
}
