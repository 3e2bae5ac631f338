package spotify

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullShow = `{"id":"s1","type":"show","uri":"spotify:show:s1","name":"Song Exploder",
	"publisher":"Hrishikesh Hirway","media_type":"audio","languages":["en"],"total_episodes":2,
	"episodes":{"items":[
		{"id":"e1","type":"episode","name":"Björk","duration_ms":1500000,"release_date":"2020-01-01"},
		{"id":"e2","type":"episode","name":"Metallica","duration_ms":1200000}
	],"limit":2,"offset":0,"total":2,"next":null}}`

func TestFindShowReusesEmbeddedEpisodes(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/shows/s1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "US", r.URL.Query().Get("market"))
		writeJSON(w, 200, fullShow)
	})
	var episodeFetches atomic.Int32
	f.handle("GET /v1/shows/s1/episodes", func(w http.ResponseWriter, r *http.Request) {
		episodeFetches.Add(1)
		assert.Equal(t, "1", r.URL.Query().Get("offset"))
		writeJSON(w, 200, `{"items":[{"id":"e2","type":"episode","name":"Metallica"}],"limit":1,"offset":1,"total":2,"next":null}`)
	})
	c := f.client(t)
	ctx := context.Background()

	show, err := c.FindShow(ctx, "s1", &FindOptions{Market: MarketCode("US")})
	require.NoError(t, err)
	require.NotNil(t, show)
	assert.Equal(t, KindShow, show.Kind())
	assert.Equal(t, "Hrishikesh Hirway", show.Publisher)
	assert.Equal(t, 2, show.TotalEpisodes)

	page, err := show.Episodes(ctx, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Björk", page.Items[0].Name)
	assert.Equal(t, 25*time.Minute, page.Items[0].Duration())
	assert.Equal(t, int32(0), episodeFetches.Load())

	page, err = show.Episodes(ctx, &PageOptions{Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int32(1), episodeFetches.Load())
}

func TestEpisodeShowCompletesLazily(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/shows/s1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, fullShow)
	})
	var completions atomic.Int32
	f.handle("GET /v1/episodes/e1", func(w http.ResponseWriter, r *http.Request) {
		completions.Add(1)
		writeJSON(w, 200, `{"id":"e1","type":"episode","name":"Björk",
			"resume_point":{"fully_played":true,"resume_position_ms":0},
			"show":{"id":"s1","type":"show","name":"Song Exploder"}}`)
	})
	c := f.client(t)
	ctx := context.Background()

	show, err := c.FindShow(ctx, "s1", nil)
	require.NoError(t, err)
	page, err := show.Episodes(ctx, nil)
	require.NoError(t, err)
	ep := page.Items[0]
	assert.False(t, ep.Completed())

	parent, err := ep.Show(ctx)
	require.NoError(t, err)
	require.True(t, parent.Valid)
	assert.Equal(t, "Song Exploder", parent.Value.Name)
	require.NotNil(t, ep.ResumePoint)
	assert.True(t, ep.ResumePoint.FullyPlayed)
	assert.Equal(t, int32(1), completions.Load())
}

func TestFindEpisodesAndSearchShows(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/episodes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "e1,missing", r.URL.Query().Get("ids"))
		writeJSON(w, 200, `{"episodes":[{"id":"e1","type":"episode","name":"Björk"},null]}`)
	})
	f.handle("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "show,episode", r.URL.Query().Get("type"))
		writeJSON(w, 200, `{
			"shows":{"items":[{"id":"s1","type":"show","name":"Song Exploder"}],"total":1},
			"episodes":{"items":[{"id":"e1","type":"episode","name":"Björk"}],"total":7}}`)
	})
	c := f.client(t)
	ctx := context.Background()

	eps, err := c.FindEpisodes(ctx, []string{"e1", "missing"}, nil)
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, "Björk", eps[0].Name)
	assert.True(t, eps[0].Completed())
	assert.Nil(t, eps[1])

	res, err := c.Search(ctx, "exploder", []Kind{KindShow, KindEpisode}, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Total)
	require.Len(t, res.Items, 2)
	assert.IsType(t, &Show{}, res.Items[0])
	assert.IsType(t, &Episode{}, res.Items[1])
}
