// Package types holds the flat data models and service interfaces shared by
// the internal packages. They decouple the CLI workflows from the lazily
// completed entities of pkg/spotify.
package types

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SpotifyService defines the interface for Spotify API operations
type SpotifyService interface {
	SearchArtist(ctx context.Context, query string) (*Artist, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	GetArtistTopTracks(ctx context.Context, artistID string) ([]Track, error)
	GetUserPlaylists(ctx context.Context) ([]Playlist, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	CheckTracksInPlaylist(ctx context.Context, playlistID string, trackIDs []string) ([]bool, error)
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error)
	GetAuthURL() string
	IsAuthenticated() bool
	CompleteAuth(ctx context.Context, code, state string) error
}

// PlaylistManager defines the interface for playlist management operations
type PlaylistManager interface {
	AddArtistToPlaylist(ctx context.Context, artistName, playlistID string, force bool) (*AddResult, error)
	FindPlaylists(ctx context.Context, searchTerm string) ([]Playlist, error)
	GetTopTracks(ctx context.Context, artistID string, n int) ([]Track, error)
	FilterPlaylistsBySearch(playlists []Playlist, searchTerm string) []Playlist
}

// DuplicateDetector defines the interface for duplicate detection
type DuplicateDetector interface {
	CheckDuplicates(ctx context.Context, playlistID string, tracks []Track) (*DuplicateResult, error)
	CheckArtistInPlaylist(ctx context.Context, playlistID, artistID string) (*DuplicateResult, error)
}

// Core data models

// Artist represents a Spotify artist
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	URI    string   `json:"uri"`
	Genres []string `json:"genres"`
}

// Album represents a Spotify album
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"album_type"`
}

// Track represents a Spotify track. AddedAt is only set for playlist items.
type Track struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	URI      string    `json:"uri"`
	Artists  []Artist  `json:"artists"`
	Duration int       `json:"duration_ms"`
	Album    Album     `json:"album"`
	AddedAt  time.Time `json:"added_at,omitzero"`
}

// ArtistNames joins the track's artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// String returns "Artists - Name".
func (t Track) String() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return fmt.Sprintf("%s - %s", t.ArtistNames(), t.Name)
}

// Playlist represents a Spotify playlist
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URI        string `json:"uri"`
	OwnerID    string `json:"owner_id"`
	TrackCount int    `json:"track_count"`
	SnapshotID string `json:"snapshot_id"`
}

// AddResult represents the result of adding an artist to a playlist
type AddResult struct {
	Success      bool     `json:"success"`
	Artist       Artist   `json:"artist"`
	TracksAdded  []Track  `json:"tracks_added"`
	Playlist     Playlist `json:"playlist"`
	WasDuplicate bool     `json:"was_duplicate"`
	Message      string   `json:"message"`
}

// DuplicateResult represents the result of duplicate detection. LastAdded
// is the most recent time one of the duplicates was added to the playlist.
type DuplicateResult struct {
	HasDuplicates   bool      `json:"has_duplicates"`
	DuplicateTracks []Track   `json:"duplicate_tracks"`
	LastAdded       time.Time `json:"last_added"`
	ArtistName      string    `json:"artist_name"`
	Message         string    `json:"message"`
}
