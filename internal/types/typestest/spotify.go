// Package typestest provides a configurable types.SpotifyService for tests.
package typestest

import (
	"context"
	"errors"

	"github.com/toozej/spotigo/internal/types"
)

// ErrNotImplemented is returned by every method whose func is unset.
var ErrNotImplemented = errors.New("not implemented")

// SpotifyService implements types.SpotifyService by delegating to its func
// fields.
type SpotifyService struct {
	SearchArtistFunc          func(ctx context.Context, query string) (*types.Artist, error)
	SearchTracksFunc          func(ctx context.Context, query string, limit int) ([]types.Track, error)
	GetArtistTopTracksFunc    func(ctx context.Context, artistID string) ([]types.Track, error)
	GetUserPlaylistsFunc      func(ctx context.Context) ([]types.Playlist, error)
	GetPlaylistTracksFunc     func(ctx context.Context, playlistID string) ([]types.Track, error)
	AddTracksToPlaylistFunc   func(ctx context.Context, playlistID string, trackIDs []string) error
	CheckTracksInPlaylistFunc func(ctx context.Context, playlistID string, trackIDs []string) ([]bool, error)
	CreatePlaylistFunc        func(ctx context.Context, name, description string, public bool) (*types.Playlist, error)
	GetAuthURLFunc            func() string
	IsAuthenticatedFunc       func() bool
	CompleteAuthFunc          func(ctx context.Context, code, state string) error
}

var _ types.SpotifyService = (*SpotifyService)(nil)

func (m *SpotifyService) SearchArtist(ctx context.Context, query string) (*types.Artist, error) {
	if m.SearchArtistFunc != nil {
		return m.SearchArtistFunc(ctx, query)
	}
	return nil, ErrNotImplemented
}

func (m *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]types.Track, error) {
	if m.SearchTracksFunc != nil {
		return m.SearchTracksFunc(ctx, query, limit)
	}
	return nil, ErrNotImplemented
}

func (m *SpotifyService) GetArtistTopTracks(ctx context.Context, artistID string) ([]types.Track, error) {
	if m.GetArtistTopTracksFunc != nil {
		return m.GetArtistTopTracksFunc(ctx, artistID)
	}
	return nil, ErrNotImplemented
}

func (m *SpotifyService) GetUserPlaylists(ctx context.Context) ([]types.Playlist, error) {
	if m.GetUserPlaylistsFunc != nil {
		return m.GetUserPlaylistsFunc(ctx)
	}
	return nil, ErrNotImplemented
}

func (m *SpotifyService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]types.Track, error) {
	if m.GetPlaylistTracksFunc != nil {
		return m.GetPlaylistTracksFunc(ctx, playlistID)
	}
	return nil, ErrNotImplemented
}

func (m *SpotifyService) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.AddTracksToPlaylistFunc != nil {
		return m.AddTracksToPlaylistFunc(ctx, playlistID, trackIDs)
	}
	return ErrNotImplemented
}

func (m *SpotifyService) CheckTracksInPlaylist(ctx context.Context, playlistID string, trackIDs []string) ([]bool, error) {
	if m.CheckTracksInPlaylistFunc != nil {
		return m.CheckTracksInPlaylistFunc(ctx, playlistID, trackIDs)
	}
	return nil, ErrNotImplemented
}

func (m *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*types.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, name, description, public)
	}
	return nil, ErrNotImplemented
}

func (m *SpotifyService) GetAuthURL() string {
	if m.GetAuthURLFunc != nil {
		return m.GetAuthURLFunc()
	}
	return ""
}

func (m *SpotifyService) IsAuthenticated() bool {
	if m.IsAuthenticatedFunc != nil {
		return m.IsAuthenticatedFunc()
	}
	return false
}

func (m *SpotifyService) CompleteAuth(ctx context.Context, code, state string) error {
	if m.CompleteAuthFunc != nil {
		return m.CompleteAuthFunc(ctx, code, state)
	}
	return ErrNotImplemented
}
