package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// servePlaylistTracks serves a playlist of total tracks in pages. The track
// at nullAt has been removed from the catalogue and is served as null.
// The returned func reports how often each offset was fetched.
func servePlaylistTracks(f *fakeSpotify, total, nullAt int) func() map[int]int {
	var mu sync.Mutex
	fetches := map[int]int{}

	f.handle("GET /v1/playlists/p1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, fmt.Sprintf(`{"id":"p1","type":"playlist","name":"Mix",
			"owner":{"id":"owner","type":"user"},
			"tracks":{"href":"%s/v1/playlists/p1/tracks","total":%d}}`, f.URL, total))
	})
	f.handle("GET /v1/playlists/p1/tracks", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit == 0 {
			limit = 100
		}
		mu.Lock()
		fetches[offset]++
		mu.Unlock()

		var items []string
		for i := offset; i < min(offset+limit, total); i++ {
			if i == nullAt {
				items = append(items, `{"added_at":"2024-01-02T03:04:05Z","track":null}`)
				continue
			}
			items = append(items, fmt.Sprintf(
				`{"added_at":"2024-01-02T03:04:05Z","track":{"id":"t%d","type":"track","name":"Track %d"}}`, i, i))
		}
		link := func(off int) string {
			return fmt.Sprintf(`"%s/v1/playlists/p1/tracks?offset=%d&limit=%d"`, f.URL, off, limit)
		}
		next, prev := "null", "null"
		if offset+limit < total {
			next = link(offset + limit)
		}
		if offset > 0 {
			prev = link(max(offset-limit, 0))
		}
		writeJSON(w, 200, fmt.Sprintf(`{"href":"x","items":[%s],"limit":%d,"offset":%d,"total":%d,"next":%s,"previous":%s}`,
			strings.Join(items, ","), limit, offset, total, next, prev))
	})
	return func() map[int]int {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[int]int, len(fetches))
		for k, v := range fetches {
			out[k] = v
		}
		return out
	}
}

func TestPageAllIsContiguous(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
	}{
		{name: "several pages", total: 5, limit: 2},
		{name: "exact pages", total: 6, limit: 3},
		{name: "single page", total: 3, limit: 10},
		{name: "empty", total: 0, limit: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeSpotify(t)
			servePlaylistTracks(f, tt.total, 3)
			c := f.client(t)
			ctx := context.Background()

			p, err := c.FindPlaylist(ctx, "", "p1")
			require.NoError(t, err)
			first, err := p.Tracks(ctx, &PageOptions{Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.total, first.Total)
			assert.LessOrEqual(t, first.Len(), tt.limit)

			all, err := first.All(ctx)
			require.NoError(t, err)
			require.Len(t, all, first.Total)
			for i, track := range all {
				if i == 3 {
					assert.Nil(t, track)
					continue
				}
				require.NotNil(t, track)
				assert.Equal(t, "t"+strconv.Itoa(i), track.ID())
				assert.Equal(t, 2024, track.AddedAt.Year())
			}
		})
	}
}

func TestPageNextPreviousCaching(t *testing.T) {
	f := newFakeSpotify(t)
	fetches := servePlaylistTracks(f, 5, -1)
	c := f.client(t)
	ctx := context.Background()

	p, err := c.FindPlaylist(ctx, "", "p1")
	require.NoError(t, err)
	first, err := p.Tracks(ctx, &PageOptions{Limit: 2})
	require.NoError(t, err)
	assert.False(t, first.HasPrevious())
	assert.True(t, first.HasNext())

	prev, err := first.Previous(ctx)
	require.NoError(t, err)
	assert.Nil(t, prev)

	second, err := first.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 2, second.Offset)

	back, err := second.Previous(ctx)
	require.NoError(t, err)
	assert.Same(t, first, back)

	again, err := first.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, second, again)

	third, err := second.Next(ctx)
	require.NoError(t, err)
	assert.False(t, third.HasNext())
	end, err := third.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, end)

	assert.Equal(t, map[int]int{0: 1, 2: 1, 4: 1}, fetches())
}

func TestPagePreviousFetchesAndLinksBack(t *testing.T) {
	f := newFakeSpotify(t)
	fetches := servePlaylistTracks(f, 6, -1)
	c := f.client(t)
	ctx := context.Background()

	p, err := c.FindPlaylist(ctx, "", "p1")
	require.NoError(t, err)
	last, err := p.Tracks(ctx, &PageOptions{Limit: 2, Offset: 4})
	require.NoError(t, err)

	middle, err := last.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, middle.Offset)

	forward, err := middle.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, last, forward)
	assert.Equal(t, map[int]int{4: 1, 2: 1}, fetches())
}

func TestPagesIteratorStops(t *testing.T) {
	f := newFakeSpotify(t)
	fetches := servePlaylistTracks(f, 10, -1)
	c := f.client(t)
	ctx := context.Background()

	p, err := c.FindPlaylist(ctx, "", "p1")
	require.NoError(t, err)
	first, err := p.Tracks(ctx, &PageOptions{Limit: 2})
	require.NoError(t, err)

	seen := 0
	for page, err := range first.Pages(ctx) {
		require.NoError(t, err)
		seen += page.Len()
		if seen >= 4 {
			break
		}
	}
	assert.Equal(t, 4, seen)
	assert.Equal(t, map[int]int{0: 1, 2: 1}, fetches())
}

func TestPageErrorPropagates(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "" {
			writeJSON(w, 200, fmt.Sprintf(`{"items":[{"track":{"id":"t0"}}],"limit":1,"offset":0,"total":2,
				"next":"%s/v1/me/tracks?offset=1&limit=1"}`, f.URL))
			return
		}
		writeJSON(w, 502, `{"error":{"status":502,"message":"bad gateway"}}`)
	})
	c := f.client(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterUserCredentials(ctx, Credentials{Subject: "alice", AccessToken: "tok"}))
	user := &User{}
	user.id = "alice"
	user.bind(c, "")

	first, err := user.SavedTracks(ctx, nil)
	require.NoError(t, err)
	_, err = first.All(ctx)
	assert.ErrorIs(t, err, ErrRemoteRequestFailed)
	assert.Nil(t, first.nextPage)
}

func TestNewReleasesRootKey(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/browse/new-releases", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "US", r.URL.Query().Get("country"))
		writeJSON(w, 200, `{"albums":{"items":[{"id":"a1","type":"album","name":"New"}],"limit":1,"offset":0,"total":1,"next":null}}`)
	})
	c := f.client(t)

	page, err := c.NewReleases(context.Background(), &BrowseOptions{Country: "US", Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "New", page.Items[0].Name)
	assert.False(t, page.HasNext())
}

func TestAlbumTracksReusesEmbeddedPage(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/albums/al1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"id":"al1","type":"album","name":"A Love Supreme",
			"tracks":{"items":[{"id":"t1","type":"track","name":"Acknowledgement"}],"limit":50,"offset":0,"total":1,"next":null}}`)
	})
	c := f.client(t)
	ctx := context.Background()

	album, err := c.FindAlbum(ctx, "al1", nil)
	require.NoError(t, err)
	page, err := album.Tracks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Acknowledgement", page.Items[0].Name)
	assert.Equal(t, int32(1), f.apiCalls.Load())
}

func TestPageAllIgnoresReportedTotal(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/me/top/artists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"items":[{"id":"a1","type":"artist","name":"Nina"}],"limit":1,"offset":0,"total":4611686018427387904,"next":null}`)
	})
	ctx := context.Background()
	u := authorizedUser(t, f.client(t))

	first, err := u.TopArtists(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1<<62, first.Total)

	var all []*Artist
	require.NotPanics(t, func() { all, err = first.All(ctx) })
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Nina", all[0].Name)
}
