package spotify

import (
	"context"

	"github.com/toozej/spotigo/internal/types"
	"github.com/toozej/spotigo/pkg/spotify"
)

// toArtist converts a full artist. Genres are read through the lazy
// accessor, which completes the artist when it was simplified.
func toArtist(ctx context.Context, a *spotify.Artist) types.Artist {
	out := simpleArtist(a)
	if genres, err := a.Genres(ctx); err == nil && genres.Valid {
		out.Genres = genres.Value
	}
	return out
}

// simpleArtist converts without triggering completion; simplified artists
// carry no genres.
func simpleArtist(a *spotify.Artist) types.Artist {
	return types.Artist{
		ID:     a.ID(),
		Name:   a.Name,
		URI:    a.URI(),
		Genres: []string{},
	}
}

func toTrack(ctx context.Context, t *spotify.Track) types.Track {
	artists := make([]types.Artist, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a != nil {
			artists = append(artists, simpleArtist(a))
		}
	}
	out := types.Track{
		ID:       t.ID(),
		Name:     t.Name,
		URI:      t.URI(),
		Artists:  artists,
		Duration: t.DurationMS,
		AddedAt:  t.AddedAt,
	}
	if album, err := t.Album(ctx); err == nil && album.Valid && album.Value != nil {
		out.Album = types.Album{
			ID:   album.Value.ID(),
			Name: album.Value.Name,
			Type: album.Value.AlbumType,
		}
	}
	return out
}

// toTracks converts in order, dropping nil entries.
func toTracks(ctx context.Context, tracks []*spotify.Track) []types.Track {
	out := make([]types.Track, 0, len(tracks))
	for _, t := range tracks {
		if t != nil {
			out = append(out, toTrack(ctx, t))
		}
	}
	return out
}

func toPlaylist(p *spotify.Playlist) types.Playlist {
	out := types.Playlist{
		ID:         p.ID(),
		Name:       p.Name,
		URI:        p.URI(),
		TrackCount: p.TracksTotal,
		SnapshotID: p.SnapshotID,
	}
	if p.Owner != nil {
		out.OwnerID = p.Owner.ID()
	}
	return out
}
