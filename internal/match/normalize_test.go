package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSearchPayload_TV(t *testing.T) {
	payload := json.RawMessage(`{
		"page": 1,
		"results": [
			{"id": 1429, "name": "Attack on Titan", "original_name": "進撃の巨人",
			 "first_air_date": "2013-04-07", "popularity": 120.5, "vote_average": 8.7,
			 "vote_count": 6200, "overview": "Humanity fights titans."}
		],
		"total_pages": 1,
		"total_results": 1
	}`)

	cands := NormalizeSearchPayload(payload, KindTV)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, int64(1429), c.ID)
	assert.Equal(t, KindTV, c.Kind)
	assert.Equal(t, "Attack on Titan", c.Title)
	assert.Equal(t, "進撃の巨人", c.OriginalTitle)
	assert.Equal(t, "2013-04-07", c.Date)
	assert.Equal(t, 2013, c.Year())
	assert.Equal(t, 120.5, c.Popularity)
}

func TestNormalizeSearchPayload_Movie(t *testing.T) {
	payload := json.RawMessage(`{
		"results": [
			{"id": 949, "title": "Heat", "original_title": "Heat", "release_date": "1995-12-15"}
		]
	}`)

	cands := NormalizeSearchPayload(payload, KindMovie)
	require.Len(t, cands, 1)
	assert.Equal(t, "Heat", cands[0].Title)
	assert.Equal(t, 1995, cands[0].Year())
	assert.Equal(t, KindMovie, cands[0].Kind)
}

func TestNormalizeSearchPayload_SkipsInvalidItems(t *testing.T) {
	payload := json.RawMessage(`{
		"results": [
			{"id": 0, "name": "No ID"},
			{"id": 10, "name": ""},
			{"id": 20, "name": "Kept"}
		]
	}`)

	cands := NormalizeSearchPayload(payload, KindTV)
	require.Len(t, cands, 1)
	assert.Equal(t, int64(20), cands[0].ID)
}

func TestNormalizeSearchPayload_LooseCoercion(t *testing.T) {
	// popularity arrives as a string; the strict decode fails and the item
	// goes through the attribute-bag pass.
	payload := json.RawMessage(`{
		"results": [
			{"id": 42, "name": "Oddball", "popularity": "not-a-number", "first_air_date": "2020-01-01"}
		]
	}`)

	cands := NormalizeSearchPayload(payload, KindTV)
	require.Len(t, cands, 1)
	assert.Equal(t, int64(42), cands[0].ID)
	assert.Equal(t, "Oddball", cands[0].Title)
	assert.Equal(t, float64(0), cands[0].Popularity)
	assert.Equal(t, 2020, cands[0].Year())
}

func TestNormalizeSearchPayload_BadEnvelope(t *testing.T) {
	assert.Nil(t, NormalizeSearchPayload(json.RawMessage(`not json`), KindTV))
	assert.Empty(t, NormalizeSearchPayload(json.RawMessage(`{"results": []}`), KindTV))
}

func TestNormalizeDetailsPayload(t *testing.T) {
	payload := json.RawMessage(`{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20"}`)

	cand, ok := NormalizeDetailsPayload(payload, KindTV)
	require.True(t, ok)
	assert.Equal(t, int64(1396), cand.ID)
	assert.Equal(t, "Breaking Bad", cand.Title)

	_, ok = NormalizeDetailsPayload(json.RawMessage(`{"id": 0}`), KindTV)
	assert.False(t, ok)
}

func TestCandidateYear(t *testing.T) {
	assert.Equal(t, 0, Candidate{}.Year())
	assert.Equal(t, 0, Candidate{Date: "19"}.Year())
	assert.Equal(t, 0, Candidate{Date: "yyyy-01-01"}.Year())
	assert.Equal(t, 2024, Candidate{Date: "2024-06-01"}.Year())
}
