package spotify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/toozej/spotigo/internal/store"
	"github.com/toozej/spotigo/internal/types"
	"github.com/toozej/spotigo/pkg/config"
	"github.com/toozej/spotigo/pkg/spotify"
)

// maxTopTracks caps how many of an artist's top tracks are returned.
const maxTopTracks = 5

var errNotAvailable = errors.New("spotify client not available")

// Service implements the types.SpotifyService interface on top of a
// session. Entities fetched once are kept so that later calls reuse their
// cached relations instead of fetching them again.
type Service struct {
	client *Client
	logger *logrus.Logger

	mu        sync.Mutex
	artists   map[string]*spotify.Artist
	playlists map[string]*spotify.Playlist
}

// NewService creates a new Spotify service that implements types.SpotifyService
func NewService(ctx context.Context, cfg config.SpotifyConfig, st store.Store, logger *logrus.Logger) *Service {
	logger.WithFields(logrus.Fields{
		"client_id":     cfg.ClientID,
		"client_secret": cfg.ClientSecret != "",
		"redirect_url":  cfg.RedirectURL,
	}).Debug("Creating Spotify service with config")

	client, err := NewClient(ctx, cfg, st, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to create Spotify client")
		return &Service{logger: logger}
	}
	return NewServiceWithClient(client, logger)
}

// NewServiceWithClient wraps an existing session.
func NewServiceWithClient(client *Client, logger *logrus.Logger) *Service {
	return &Service{
		client:    client,
		logger:    logger,
		artists:   make(map[string]*spotify.Artist),
		playlists: make(map[string]*spotify.Playlist),
	}
}

// Client returns the session, or nil when it could not be created.
func (s *Service) Client() *Client {
	return s.client
}

// GetAuthURL returns the URL for user authentication
func (s *Service) GetAuthURL() string {
	if s.client == nil {
		return ""
	}
	return s.client.GetAuthURL()
}

// IsAuthenticated returns whether the user is authenticated
func (s *Service) IsAuthenticated() bool {
	if s.client == nil {
		return false
	}
	return s.client.IsAuthenticated()
}

// CompleteAuth completes the authentication process
func (s *Service) CompleteAuth(ctx context.Context, code, state string) error {
	if s.client == nil {
		return errNotAvailable
	}
	return s.client.CompleteAuth(ctx, code, state)
}

func (s *Service) user() (*spotify.User, error) {
	if s.client == nil {
		return nil, errNotAvailable
	}
	u := s.client.User()
	if u == nil {
		return nil, fmt.Errorf("user not authenticated to Spotify: %w", spotify.ErrAuthenticationRequired)
	}
	return u, nil
}

func (s *Service) log(operation string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"component": "spotify_service",
		"operation": operation,
	})
}

// SearchArtist searches for an artist by name and returns the best match
func (s *Service) SearchArtist(ctx context.Context, query string) (*types.Artist, error) {
	if s.client == nil {
		return nil, errNotAvailable
	}
	s.log("search_artist").WithField("query", query).Debug("Searching for artist")

	res, err := s.client.API().SearchArtists(ctx, query, &spotify.SearchOptions{Limit: 1})
	if err != nil {
		s.log("search_artist").WithError(err).WithField("query", query).Error("Failed to search for artist")
		return nil, fmt.Errorf("failed to search for artist: %w", err)
	}
	if len(res.Items) == 0 {
		s.log("search_artist").WithField("query", query).Warn("No artists found")
		return nil, fmt.Errorf("no artists found for query: %s", query)
	}

	found := res.Items[0]
	s.mu.Lock()
	s.artists[found.ID()] = found
	s.mu.Unlock()

	artist := toArtist(ctx, found)
	s.log("search_artist").WithFields(logrus.Fields{
		"query":          query,
		"matched_artist": artist.Name,
		"artist_id":      artist.ID,
	}).Info("Artist search completed successfully")
	return &artist, nil
}

// SearchTracks returns up to limit catalogue tracks matching query.
func (s *Service) SearchTracks(ctx context.Context, query string, limit int) ([]types.Track, error) {
	if s.client == nil {
		return nil, errNotAvailable
	}
	s.log("search_tracks").WithFields(logrus.Fields{"query": query, "limit": limit}).Debug("Searching for tracks")

	res, err := s.client.API().SearchTracks(ctx, query, &spotify.SearchOptions{Limit: limit, Market: s.client.Market()})
	if err != nil {
		s.log("search_tracks").WithError(err).WithField("query", query).Error("Failed to search for tracks")
		return nil, fmt.Errorf("failed to search for tracks: %w", err)
	}
	return toTracks(ctx, res.Items), nil
}

// artist returns the cached entity for id or fetches it.
func (s *Service) artist(ctx context.Context, id string) (*spotify.Artist, error) {
	s.mu.Lock()
	a, ok := s.artists[id]
	s.mu.Unlock()
	if ok {
		return a, nil
	}
	a, err := s.client.API().FindArtist(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("artist %s not found", id)
	}
	s.mu.Lock()
	s.artists[id] = a
	s.mu.Unlock()
	return a, nil
}

// GetArtistTopTracks retrieves the top 5 tracks for an artist
func (s *Service) GetArtistTopTracks(ctx context.Context, artistID string) ([]types.Track, error) {
	if s.client == nil {
		return nil, errNotAvailable
	}
	logger := s.log("get_top_tracks").WithField("artist_id", artistID)
	logger.Debug("Retrieving artist top tracks")

	artist, err := s.artist(ctx, artistID)
	if err != nil {
		logger.WithError(err).Error("Failed to retrieve artist")
		return nil, fmt.Errorf("failed to get artist %s: %w", artistID, err)
	}

	country := s.client.config.Market
	if country == "" {
		country = "US"
	}
	top, err := artist.TopTracks(ctx, country)
	if err != nil {
		logger.WithError(err).Error("Failed to retrieve artist top tracks")
		return nil, fmt.Errorf("failed to get top tracks for artist %s: %w", artistID, err)
	}
	if len(top) == 0 {
		logger.Warn("No top tracks found for artist")
		return []types.Track{}, nil
	}

	tracks := toTracks(ctx, top[:min(len(top), maxTopTracks)])
	logger.WithField("track_count", len(tracks)).Info("Retrieved artist top tracks successfully")
	return tracks, nil
}

// GetUserPlaylists retrieves every playlist owned by the logged in user.
func (s *Service) GetUserPlaylists(ctx context.Context) ([]types.Playlist, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	logger := s.log("get_playlists").WithField("user_id", u.ID())
	logger.Debug("Retrieving user playlists")

	first, err := u.Playlists(ctx, &spotify.PageOptions{Limit: 50})
	if err != nil {
		logger.WithError(err).Error("Failed to retrieve user playlists")
		return nil, fmt.Errorf("failed to get user playlists: %w", err)
	}
	all, err := first.All(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to retrieve user playlists")
		return nil, fmt.Errorf("failed to get user playlists: %w", err)
	}

	var owned []types.Playlist
	s.mu.Lock()
	for _, p := range all {
		if p == nil || p.Owner == nil || p.Owner.ID() != u.ID() {
			continue
		}
		s.playlists[p.ID()] = p
		owned = append(owned, toPlaylist(p))
	}
	s.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"total_playlists": len(all),
		"user_playlists":  len(owned),
	}).Debug("Filtered to user-owned playlists")
	return owned, nil
}

// playlist returns the cached entity for id or fetches it with the user's
// credentials.
func (s *Service) playlist(ctx context.Context, id string) (*spotify.Playlist, error) {
	s.mu.Lock()
	p, ok := s.playlists[id]
	s.mu.Unlock()
	if ok {
		return p, nil
	}
	owner := ""
	if u := s.client.User(); u != nil {
		owner = u.ID()
	}
	p, err := s.client.API().FindPlaylist(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("playlist %s not found", id)
	}
	s.mu.Lock()
	s.playlists[id] = p
	s.mu.Unlock()
	return p, nil
}

// GetPlaylistTracks walks every page of a playlist. Unavailable entries are
// skipped.
func (s *Service) GetPlaylistTracks(ctx context.Context, playlistID string) ([]types.Track, error) {
	if s.client == nil {
		return nil, errNotAvailable
	}
	logger := s.log("get_playlist_tracks").WithField("playlist_id", playlistID)

	p, err := s.playlist(ctx, playlistID)
	if err != nil {
		logger.WithError(err).Error("Failed to get playlist")
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}
	first, err := p.Tracks(ctx, &spotify.PageOptions{Limit: 100})
	if err != nil {
		logger.WithError(err).Error("Failed to get playlist items")
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}
	items, err := first.All(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to get playlist items")
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	tracks := toTracks(ctx, items)
	logger.WithFields(logrus.Fields{
		"total":       first.Total,
		"track_count": len(tracks),
	}).Debug("Retrieved playlist tracks")
	return tracks, nil
}

// AddTracksToPlaylist adds tracks to a specified playlist
func (s *Service) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("no tracks provided to add")
	}
	if _, err := s.user(); err != nil {
		return err
	}
	logger := s.log("add_tracks").WithFields(logrus.Fields{
		"playlist_id": playlistID,
		"track_count": len(trackIDs),
	})
	logger.WithField("track_ids", trackIDs).Debug("Adding tracks to playlist")

	p, err := s.playlist(ctx, playlistID)
	if err != nil {
		logger.WithError(err).Error("Failed to get playlist")
		return fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}
	snapshot, err := p.AddTracks(ctx, uris, nil)
	if err != nil {
		logger.WithError(err).Error("Failed to add tracks to playlist")
		return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
	}

	logger.WithField("snapshot_id", snapshot).Info("Successfully added tracks to playlist")
	return nil
}

// CheckTracksInPlaylist reports for each track id whether the playlist
// already contains it.
func (s *Service) CheckTracksInPlaylist(ctx context.Context, playlistID string, trackIDs []string) ([]bool, error) {
	if len(trackIDs) == 0 {
		return []bool{}, nil
	}
	existing, err := s.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(existing))
	for _, t := range existing {
		present[t.ID] = true
	}
	results := make([]bool, len(trackIDs))
	duplicateCount := 0
	for i, id := range trackIDs {
		results[i] = present[id]
		if results[i] {
			duplicateCount++
		}
	}

	s.log("check_tracks").WithFields(logrus.Fields{
		"playlist_id":     playlistID,
		"track_count":     len(trackIDs),
		"duplicate_count": duplicateCount,
	}).Debug("Completed duplicate track check")
	return results, nil
}

// CreatePlaylist creates a new playlist with the given name and description
func (s *Service) CreatePlaylist(ctx context.Context, name, description string, public bool) (*types.Playlist, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	logger := s.log("create_playlist").WithField("playlist_name", name)

	p, err := u.CreatePlaylist(ctx, spotify.NewPlaylist{Name: name, Description: description, Public: public})
	if err != nil {
		logger.WithError(err).Error("Failed to create playlist")
		return nil, fmt.Errorf("failed to create playlist %s: %w", name, err)
	}

	s.mu.Lock()
	s.playlists[p.ID()] = p
	s.mu.Unlock()

	playlist := toPlaylist(p)
	logger.WithField("playlist_id", playlist.ID).Info("Successfully created playlist")
	return &playlist, nil
}
