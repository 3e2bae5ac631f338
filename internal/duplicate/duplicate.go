// Package duplicate detects tracks that a playlist already contains.
package duplicate

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/toozej/spotigo/internal/types"
)

// DuplicateService implements the DuplicateDetector interface
type DuplicateService struct {
	spotify types.SpotifyService
	logger  *log.Logger
}

// NewDuplicateService creates a new duplicate detection service
func NewDuplicateService(spotify types.SpotifyService, logger *log.Logger) *DuplicateService {
	return &DuplicateService{
		spotify: spotify,
		logger:  logger,
	}
}

func (d *DuplicateService) log(operation, playlistID string) *log.Entry {
	return d.logger.WithFields(log.Fields{
		"component":   "duplicate_service",
		"operation":   operation,
		"playlist_id": playlistID,
	})
}

// CheckDuplicates reports which of tracks the playlist already contains.
// Duplicates carry the time they were last added, and LastAdded is the most
// recent of those times.
func (d *DuplicateService) CheckDuplicates(ctx context.Context, playlistID string, tracks []types.Track) (*types.DuplicateResult, error) {
	logger := d.log("check_duplicates", playlistID)
	if len(tracks) == 0 {
		logger.Debug("No tracks provided for duplicate check")
		return &types.DuplicateResult{
			HasDuplicates: false,
			Message:       "No tracks to check",
		}, nil
	}

	logger.WithField("track_count", len(tracks)).Debug("Checking for duplicate tracks in playlist")

	existing, err := d.spotify.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		logger.WithError(err).WithField("track_count", len(tracks)).Error("Failed to read playlist tracks")
		return nil, fmt.Errorf("failed to check tracks in playlist: %w", err)
	}

	// A track can appear several times; keep its latest addition.
	added := make(map[string]time.Time, len(existing))
	for _, t := range existing {
		if prev, ok := added[t.ID]; !ok || t.AddedAt.After(prev) {
			added[t.ID] = t.AddedAt
		}
	}

	result := &types.DuplicateResult{}
	var names []string
	for _, t := range tracks {
		at, ok := added[t.ID]
		if !ok {
			continue
		}
		t.AddedAt = at
		result.DuplicateTracks = append(result.DuplicateTracks, t)
		names = append(names, t.Name)
		if at.After(result.LastAdded) {
			result.LastAdded = at
		}
	}
	result.HasDuplicates = len(result.DuplicateTracks) > 0

	if result.HasDuplicates {
		result.Message = fmt.Sprintf("Found %d duplicate track(s): %s", len(names), strings.Join(names, ", "))
		logger.WithFields(log.Fields{
			"duplicate_count":      len(names),
			"duplicate_tracks":     names,
			"last_added":           result.LastAdded,
			"total_tracks_checked": len(tracks),
		}).Info("Duplicate tracks detected")
	} else {
		result.Message = "No duplicate tracks found"
		logger.WithField("total_tracks_checked", len(tracks)).Debug("No duplicate tracks found")
	}

	return result, nil
}

// CheckArtistInPlaylist checks if an artist's top tracks already exist in the playlist
func (d *DuplicateService) CheckArtistInPlaylist(ctx context.Context, playlistID, artistID string) (*types.DuplicateResult, error) {
	logger := d.log("check_artist_duplicates", playlistID).WithField("artist_id", artistID)
	logger.Debug("Checking if artist tracks exist in playlist")

	tracks, err := d.spotify.GetArtistTopTracks(ctx, artistID)
	if err != nil {
		logger.WithError(err).Error("Failed to get artist top tracks for duplicate check")
		return nil, fmt.Errorf("failed to get artist top tracks: %w", err)
	}

	if len(tracks) == 0 {
		logger.Debug("Artist has no tracks to check for duplicates")
		return &types.DuplicateResult{
			HasDuplicates: false,
			Message:       "Artist has no tracks",
		}, nil
	}

	artistName := artistNameOf(tracks[0], artistID)

	result, err := d.CheckDuplicates(ctx, playlistID, tracks)
	if err != nil {
		return nil, err
	}
	result.ArtistName = artistName

	if result.HasDuplicates {
		result.Message = fmt.Sprintf("Artist '%s' already has %d track(s) in this playlist (last added: %s). Use --force to add anyway.",
			artistName, len(result.DuplicateTracks), result.LastAdded.Format(time.DateTime))
		logger.WithFields(log.Fields{
			"artist_name":     artistName,
			"duplicate_count": len(result.DuplicateTracks),
			"last_added":      result.LastAdded,
		}).Info("Artist tracks already exist in playlist")
	} else {
		result.Message = fmt.Sprintf("Artist '%s' tracks not found in playlist, safe to add", artistName)
		logger.WithField("artist_name", artistName).Debug("Artist tracks not found in playlist")
	}

	return result, nil
}

// artistNameOf prefers the credited artist matching artistID, since top
// tracks may lead with a featured artist.
func artistNameOf(t types.Track, artistID string) string {
	for _, a := range t.Artists {
		if a.ID == artistID {
			return a.Name
		}
	}
	if len(t.Artists) > 0 {
		return t.Artists[0].Name
	}
	return ""
}
