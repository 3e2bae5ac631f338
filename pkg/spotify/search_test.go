package spotify

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchAcrossKinds(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "coltrane", q.Get("q"))
		assert.Equal(t, "album,track", q.Get("type"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "10", q.Get("offset"))
		writeJSON(w, 200, `{
			"albums":{"items":[{"id":"a1","type":"album","name":"Giant Steps"}],"total":40},
			"tracks":{"items":[{"id":"t1","type":"track","name":"Naima"},{"id":"t2","type":"track","name":"Mr. P.C."}],"total":300}
		}`)
	})
	c := f.client(t)

	res, err := c.Search(context.Background(), "coltrane", []Kind{KindAlbum, KindTrack}, &SearchOptions{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 340, res.Total)
	require.Len(t, res.Items, 3)
	assert.Equal(t, KindAlbum, res.Items[0].Kind())
	assert.Equal(t, "t1", res.Items[1].ID())
	assert.Equal(t, "t2", res.Items[2].ID())
	assert.Equal(t, int32(1), f.apiCalls.Load())
}

func TestSearchUnsupportedKind(t *testing.T) {
	f := newFakeSpotify(t)
	c := f.client(t)

	res, err := c.Search(context.Background(), "wizzler", []Kind{KindUser}, nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnsupportedSearchKind)
	var unsupported *UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "search", unsupported.Op)
	assert.Equal(t, int32(0), f.apiCalls.Load())

	_, err = c.Search(context.Background(), "jazz", []Kind{KindCategory}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedSearchKind)
	assert.Equal(t, int32(0), f.apiCalls.Load())

	_, err = c.Search(context.Background(), "x", nil, nil)
	assert.Error(t, err)
}

func TestSearchPlaylistsSkipsNulls(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"playlists":{"items":[null,{"id":"p1","type":"playlist","name":"Jazz","owner":{"id":"o1"}}],"total":2}}`)
	})
	c := f.client(t)

	res, err := c.SearchPlaylists(context.Background(), "jazz", nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Jazz", res.Items[0].Name)
	assert.Equal(t, 2, res.Total)
}

func TestSearchFromUserMarket(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "from_token", r.URL.Query().Get("market"))
		assert.Equal(t, "Bearer alice-token", r.Header.Get("Authorization"))
		writeJSON(w, 200, `{"artists":{"items":[{"id":"ar1","type":"artist","name":"Alice Coltrane"}],"total":1}}`)
	})
	c := f.client(t)
	ctx := context.Background()
	require.NoError(t, c.RegisterUserCredentials(ctx, Credentials{Subject: "alice", AccessToken: "alice-token"}))

	res, err := c.SearchArtists(ctx, "alice coltrane", &SearchOptions{Market: FromUser("alice")})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Alice Coltrane", res.Items[0].Name)
}

func TestSearchRawResponse(t *testing.T) {
	f := newFakeSpotify(t)
	f.handle("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"tracks":{"items":[],"total":0}}`)
	})
	c := f.client(t)
	c.SetRawResponse(true)

	res, err := c.SearchTracks(context.Background(), "anything", nil)
	assert.Nil(t, res)
	raw, ok := AsRaw(err)
	require.True(t, ok)
	assert.JSONEq(t, `{"tracks":{"items":[],"total":0}}`, string(raw.Body))
}
