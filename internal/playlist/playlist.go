// Package playlist implements the playlist workflows of the CLI: adding an
// artist's top tracks with duplicate protection and finding playlists by name.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sahilm/fuzzy"
	log "github.com/sirupsen/logrus"

	"github.com/toozej/spotigo/internal/types"
	"github.com/toozej/spotigo/pkg/spotify"
)

// PlaylistService implements the PlaylistManager interface
type PlaylistService struct {
	spotify   types.SpotifyService
	duplicate types.DuplicateDetector
	logger    *log.Logger
}

// NewPlaylistService creates a new playlist service. A nil duplicate
// detector disables duplicate checks.
func NewPlaylistService(spotify types.SpotifyService, duplicate types.DuplicateDetector, logger *log.Logger) *PlaylistService {
	return &PlaylistService{
		spotify:   spotify,
		duplicate: duplicate,
		logger:    logger,
	}
}

func (p *PlaylistService) log(operation string) *log.Entry {
	return p.logger.WithFields(log.Fields{
		"component": "playlist_service",
		"operation": operation,
	})
}

// AddArtistToPlaylist adds an artist's top tracks to a playlist. Unless
// force is set, nothing is added when any of them is already present.
func (p *PlaylistService) AddArtistToPlaylist(ctx context.Context, artistName, playlistID string, force bool) (*types.AddResult, error) {
	logger := p.log("add_artist").WithFields(log.Fields{
		"artist_name": artistName,
		"playlist_id": playlistID,
	})
	logger.WithField("force", force).Info("Starting to add artist to playlist")

	artist, err := p.spotify.SearchArtist(ctx, artistName)
	if err != nil {
		logger.WithError(err).Error("Failed to search for artist")
		return &types.AddResult{
			Success: false,
			Message: "Failed to find artist: " + err.Error(),
		}, err
	}
	logger = logger.WithField("artist_id", artist.ID)

	tracks, err := p.spotify.GetArtistTopTracks(ctx, artist.ID)
	if err != nil {
		logger.WithError(err).Error("Failed to get artist top tracks")
		return &types.AddResult{
			Success: false,
			Artist:  *artist,
			Message: "Failed to get artist's top tracks: " + err.Error(),
		}, err
	}

	if len(tracks) == 0 {
		logger.Warn("Artist has no tracks available")
		return &types.AddResult{
			Success: false,
			Artist:  *artist,
			Message: "Artist has no tracks available",
		}, nil
	}

	if !force && p.duplicate != nil {
		dup, err := p.duplicate.CheckArtistInPlaylist(ctx, playlistID, artist.ID)
		switch {
		case err != nil:
			logger.WithError(err).Warn("Failed to check for duplicates, proceeding anyway")
		case dup != nil && dup.HasDuplicates:
			logger.WithField("last_added", dup.LastAdded).Info("Artist tracks already exist in playlist")
			return &types.AddResult{
				Success:      false,
				Artist:       *artist,
				WasDuplicate: true,
				Message:      dup.Message,
			}, nil
		}
	}

	trackIDs := make([]string, len(tracks))
	trackNames := make([]string, len(tracks))
	for i, track := range tracks {
		trackIDs[i] = track.ID
		trackNames[i] = track.Name
	}

	if err := p.spotify.AddTracksToPlaylist(ctx, playlistID, trackIDs); err != nil {
		logger.WithError(err).WithField("track_count", len(trackIDs)).Error("Failed to add tracks to playlist")

		message := "Failed to add tracks to playlist: " + err.Error()
		if isRateLimited(err) {
			message = "Rate limited by Spotify API. Please try again later."
			logger.WithField("event", "rate_limit_hit").Warn("Spotify API rate limit encountered")
		}
		return &types.AddResult{
			Success:     false,
			Artist:      *artist,
			TracksAdded: tracks,
			Message:     message,
		}, err
	}

	logger.WithFields(log.Fields{
		"track_count": len(tracks),
		"track_names": trackNames,
	}).Info("Successfully added artist tracks to playlist")

	return &types.AddResult{
		Success:     true,
		Artist:      *artist,
		TracksAdded: tracks,
		Message:     "Successfully added " + artist.Name + "'s top tracks to playlist",
	}, nil
}

// isRateLimited reports whether err is a 429 that outlived the client's
// retries.
func isRateLimited(err error) bool {
	var apiErr *spotify.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests
	}
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

// FindPlaylists returns the user's playlists whose name matches searchTerm.
// An empty term returns all of them.
func (p *PlaylistService) FindPlaylists(ctx context.Context, searchTerm string) ([]types.Playlist, error) {
	logger := p.log("find_playlists").WithField("search_term", searchTerm)
	logger.Debug("Fetching user playlists")

	playlists, err := p.spotify.GetUserPlaylists(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch user playlists")
		return nil, err
	}

	found := p.FilterPlaylistsBySearch(playlists, searchTerm)
	logger.WithFields(log.Fields{
		"playlist_count": len(playlists),
		"match_count":    len(found),
	}).Info("Successfully fetched playlists")
	return found, nil
}

// ResolvePlaylist finds the user's playlist by id or by name. A name must
// match exactly (ignoring case) or be the only fuzzy match.
func (p *PlaylistService) ResolvePlaylist(ctx context.Context, ref string) (types.Playlist, error) {
	playlists, err := p.spotify.GetUserPlaylists(ctx)
	if err != nil {
		return types.Playlist{}, err
	}
	for _, pl := range playlists {
		if pl.ID == ref || strings.EqualFold(pl.Name, ref) {
			return pl, nil
		}
	}
	matches := p.FilterPlaylistsBySearch(playlists, ref)
	switch len(matches) {
	case 0:
		return types.Playlist{}, fmt.Errorf("no playlist matches %q", ref)
	case 1:
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return types.Playlist{}, fmt.Errorf("%q matches several playlists: %s", ref, strings.Join(names, ", "))
}

// GetOrCreatePlaylist returns the user's playlist called name, creating a
// private one with description when none exists.
func (p *PlaylistService) GetOrCreatePlaylist(ctx context.Context, name, description string) (types.Playlist, bool, error) {
	logger := p.log("get_or_create_playlist").WithField("playlist_name", name)

	playlists, err := p.spotify.GetUserPlaylists(ctx)
	if err != nil {
		return types.Playlist{}, false, fmt.Errorf("failed to get user playlists: %w", err)
	}
	for _, pl := range playlists {
		if pl.Name == name {
			logger.WithField("playlist_id", pl.ID).Debug("Found existing playlist")
			return pl, false, nil
		}
	}

	logger.Info("Playlist not found, creating new one")
	created, err := p.spotify.CreatePlaylist(ctx, name, description, false)
	if err != nil {
		return types.Playlist{}, false, fmt.Errorf("failed to create playlist '%s': %w", name, err)
	}
	logger.WithField("playlist_id", created.ID).Info("Successfully created new playlist")
	return *created, true, nil
}

// GetTopTracks returns at most n of an artist's top tracks. n <= 0 returns
// all of them.
func (p *PlaylistService) GetTopTracks(ctx context.Context, artistID string, n int) ([]types.Track, error) {
	logger := p.log("get_top_tracks").WithField("artist_id", artistID)
	logger.Debug("Fetching top tracks for artist")

	tracks, err := p.spotify.GetArtistTopTracks(ctx, artistID)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch top tracks for artist")
		return nil, err
	}
	if n > 0 && len(tracks) > n {
		tracks = tracks[:n]
	}

	logger.WithField("track_count", len(tracks)).Debug("Successfully fetched top tracks for artist")
	return tracks, nil
}

type playlistNames []types.Playlist

func (s playlistNames) String(i int) string { return s[i].Name }
func (s playlistNames) Len() int            { return len(s) }

// FilterPlaylistsBySearch keeps the playlists whose name contains
// searchTerm, ignoring case. When none does, the fuzzy matches are returned
// best first.
func (p *PlaylistService) FilterPlaylistsBySearch(playlists []types.Playlist, searchTerm string) []types.Playlist {
	if searchTerm == "" {
		return playlists
	}

	logger := p.log("filter_playlists").WithField("search_term", searchTerm)

	filtered := make([]types.Playlist, 0)
	searchLower := strings.ToLower(searchTerm)
	for _, playlist := range playlists {
		if strings.Contains(strings.ToLower(playlist.Name), searchLower) {
			filtered = append(filtered, playlist)
		}
	}

	if len(filtered) == 0 {
		for _, m := range fuzzy.FindFrom(searchTerm, playlistNames(playlists)) {
			filtered = append(filtered, playlists[m.Index])
		}
		logger = logger.WithField("fuzzy", true)
	}

	logger.WithFields(log.Fields{
		"original_count": len(playlists),
		"filtered_count": len(filtered),
	}).Debug("Playlist filtering completed")

	return filtered
}
