package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotigo/pkg/spotify"
)

func decodeEntity[T any](t *testing.T, body string) *T {
	t.Helper()
	v := new(T)
	require.NoError(t, json.Unmarshal([]byte(body), v))
	return v
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		entity spotify.Entity
		want   string
	}{
		{
			name:   "track",
			entity: decodeEntity[spotify.Track](t, `{"id":"t1","type":"track","name":"So What","duration_ms":562000,"artists":[{"id":"a","name":"Miles Davis"}]}`),
			want:   "🎵 Miles Davis - So What [9:22]",
		},
		{
			name:   "track without artists",
			entity: decodeEntity[spotify.Track](t, `{"id":"t1","type":"track","name":"So What"}`),
			want:   "🎵 So What",
		},
		{
			name:   "album",
			entity: decodeEntity[spotify.Album](t, `{"id":"al","type":"album","name":"Kind of Blue","album_type":"album","release_date":"1959-08-17","artists":[{"id":"a","name":"Miles Davis"}]}`),
			want:   "💿 Kind of Blue by Miles Davis (album, 1959-08-17)",
		},
		{
			name:   "artist",
			entity: decodeEntity[spotify.Artist](t, `{"id":"a","type":"artist","name":"Miles Davis"}`),
			want:   "🎤 Miles Davis",
		},
		{
			name:   "playlist",
			entity: decodeEntity[spotify.Playlist](t, `{"id":"p","type":"playlist","name":"Mix","owner":{"id":"alice","type":"user","display_name":"Alice"},"tracks":{"total":3}}`),
			want:   "📃 Mix (3 tracks) by Alice",
		},
		{
			name:   "user without display name",
			entity: decodeEntity[spotify.User](t, `{"id":"bob","type":"user"}`),
			want:   "👤 bob",
		},
		{
			name:   "show",
			entity: decodeEntity[spotify.Show](t, `{"id":"s","type":"show","name":"Song Exploder","publisher":"Hrishikesh Hirway"}`),
			want:   "🎙️ Song Exploder by Hrishikesh Hirway",
		},
		{
			name:   "episode",
			entity: decodeEntity[spotify.Episode](t, `{"id":"e","type":"episode","name":"Björk","duration_ms":61000}`),
			want:   "📻 Björk [1:01]",
		},
		{
			name:   "category",
			entity: decodeEntity[spotify.Category](t, `{"id":"jazz","name":"Jazz"}`),
			want:   "🗂️ Jazz",
		},
		{name: "missing", entity: nil, want: "(not found)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.entity))
		})
	}
}

func TestToEntities(t *testing.T) {
	track := decodeEntity[spotify.Track](t, `{"id":"t1","type":"track","name":"A"}`)
	got := toEntities([]*spotify.Track{track, nil})
	require.Len(t, got, 2)
	assert.Equal(t, spotify.Entity(track), got[0])
	assert.Nil(t, got[1])

	var buf bytes.Buffer
	printEntities(&buf, 10, got)
	assert.Contains(t, buf.String(), "11. 🎵 A")
	assert.Contains(t, buf.String(), "12. (not found)")
}

func TestPrintRaw(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, printRaw(&buf, errors.New("other")))
	assert.False(t, printRaw(&buf, nil))
	assert.Empty(t, buf.String())

	err := fmt.Errorf("wrapped: %w", &spotify.RawResponse{Path: "tracks/1", Body: []byte(`{"id":"1"}`)})
	assert.True(t, printRaw(&buf, err))
	assert.Equal(t, "{\"id\":\"1\"}\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "3:05", formatDuration(185*time.Second))
	assert.Equal(t, "61:01", formatDuration(time.Hour+61*time.Second))
}
