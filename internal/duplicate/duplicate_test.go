package duplicate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotigo/internal/types"
	"github.com/toozej/spotigo/internal/types/typestest"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestNewDuplicateService(t *testing.T) {
	logger := logrus.New()
	mockSpotify := &typestest.SpotifyService{}

	service := NewDuplicateService(mockSpotify, logger)

	assert.NotNil(t, service)
	assert.Equal(t, mockSpotify, service.spotify)
	assert.Equal(t, logger, service.logger)
}

func TestDuplicateService_CheckDuplicates(t *testing.T) {
	playlistTracks := []types.Track{
		{ID: "track1", Name: "Song 1", AddedAt: day(1)},
		{ID: "track3", Name: "Song 3", AddedAt: day(4)},
		{ID: "track1", Name: "Song 1", AddedAt: day(2)},
		{ID: "other", Name: "Other", AddedAt: day(9)},
	}

	tests := []struct {
		name           string
		tracks         []types.Track
		playlistTracks []types.Track
		mockError      error
		expectedError  bool
		checkResult    func(*testing.T, *types.DuplicateResult)
	}{
		{
			name:   "no tracks provided",
			tracks: []types.Track{},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Equal(t, "No tracks to check", result.Message)
				assert.True(t, result.LastAdded.IsZero())
				assert.Empty(t, result.DuplicateTracks)
			},
		},
		{
			name: "no duplicates found",
			tracks: []types.Track{
				{ID: "track2", Name: "Song 2"},
				{ID: "track4", Name: "Song 4"},
			},
			playlistTracks: playlistTracks,
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Equal(t, "No duplicate tracks found", result.Message)
				assert.Empty(t, result.DuplicateTracks)
				assert.True(t, result.LastAdded.IsZero())
			},
		},
		{
			name: "some duplicates found",
			tracks: []types.Track{
				{ID: "track1", Name: "Song 1"},
				{ID: "track2", Name: "Song 2"},
				{ID: "track3", Name: "Song 3"},
			},
			playlistTracks: playlistTracks,
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.True(t, result.HasDuplicates)
				assert.Equal(t, "Found 2 duplicate track(s): Song 1, Song 3", result.Message)
				require.Len(t, result.DuplicateTracks, 2)
				assert.Equal(t, "track1", result.DuplicateTracks[0].ID)
				assert.Equal(t, day(2), result.DuplicateTracks[0].AddedAt)
				assert.Equal(t, "track3", result.DuplicateTracks[1].ID)
				assert.Equal(t, day(4), result.LastAdded)
			},
		},
		{
			name:           "empty playlist",
			tracks:         []types.Track{{ID: "track1", Name: "Song 1"}},
			playlistTracks: nil,
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
			},
		},
		{
			name:          "spotify api error",
			tracks:        []types.Track{{ID: "track1", Name: "Song 1"}},
			mockError:     errors.New("spotify API error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			mockSpotify := &typestest.SpotifyService{
				GetPlaylistTracksFunc: func(ctx context.Context, playlistID string) ([]types.Track, error) {
					calls++
					assert.Equal(t, "playlist123", playlistID)
					return tt.playlistTracks, tt.mockError
				},
			}

			service := NewDuplicateService(mockSpotify, quietLogger())

			result, err := service.CheckDuplicates(context.Background(), "playlist123", tt.tracks)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, result)
			tt.checkResult(t, result)
			if len(tt.tracks) == 0 {
				assert.Zero(t, calls)
			}
		})
	}
}

func TestDuplicateService_CheckArtistInPlaylist(t *testing.T) {
	artist := types.Artist{ID: "artist123", Name: "Test Artist"}
	featured := types.Artist{ID: "feat", Name: "Featured"}

	tests := []struct {
		name            string
		mockTracks      []types.Track
		mockTracksError error
		playlistTracks  []types.Track
		playlistError   error
		expectedError   bool
		checkResult     func(*testing.T, *types.DuplicateResult)
	}{
		{
			name:       "artist has no tracks",
			mockTracks: []types.Track{},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Equal(t, "Artist has no tracks", result.Message)
				assert.Equal(t, "", result.ArtistName)
				assert.True(t, result.LastAdded.IsZero())
			},
		},
		{
			name: "artist tracks with no duplicates",
			mockTracks: []types.Track{
				{ID: "track1", Name: "Song 1", Artists: []types.Artist{artist}},
				{ID: "track2", Name: "Song 2", Artists: []types.Artist{artist}},
			},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Contains(t, result.Message, "tracks not found in playlist, safe to add")
				assert.Equal(t, "Test Artist", result.ArtistName)
			},
		},
		{
			name: "artist tracks with duplicates",
			mockTracks: []types.Track{
				{ID: "track1", Name: "Song 1", Artists: []types.Artist{featured, artist}},
				{ID: "track2", Name: "Song 2", Artists: []types.Artist{artist}},
			},
			playlistTracks: []types.Track{{ID: "track1", AddedAt: day(3)}},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.True(t, result.HasDuplicates)
				assert.Equal(t, "Test Artist", result.ArtistName)
				assert.Contains(t, result.Message, "already has 1 track(s)")
				assert.Contains(t, result.Message, "2024-03-03 12:00:00")
				require.Len(t, result.DuplicateTracks, 1)
				assert.Equal(t, "track1", result.DuplicateTracks[0].ID)
			},
		},
		{
			name:            "get artist tracks error",
			mockTracksError: errors.New("failed to get artist tracks"),
			expectedError:   true,
		},
		{
			name:          "playlist tracks error",
			mockTracks:    []types.Track{{ID: "track1", Name: "Song 1", Artists: []types.Artist{artist}}},
			playlistError: errors.New("failed to read playlist"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSpotify := &typestest.SpotifyService{
				GetArtistTopTracksFunc: func(ctx context.Context, artistID string) ([]types.Track, error) {
					return tt.mockTracks, tt.mockTracksError
				},
				GetPlaylistTracksFunc: func(ctx context.Context, playlistID string) ([]types.Track, error) {
					return tt.playlistTracks, tt.playlistError
				},
			}

			service := NewDuplicateService(mockSpotify, quietLogger())

			result, err := service.CheckArtistInPlaylist(context.Background(), "playlist123", "artist123")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, result)
			tt.checkResult(t, result)
		})
	}
}

func TestArtistNameOf(t *testing.T) {
	assert.Equal(t, "", artistNameOf(types.Track{}, "a"))
	assert.Equal(t, "First", artistNameOf(types.Track{Artists: []types.Artist{{ID: "x", Name: "First"}}}, "a"))
	assert.Equal(t, "Match", artistNameOf(types.Track{Artists: []types.Artist{{ID: "x", Name: "First"}, {ID: "a", Name: "Match"}}}, "a"))
}
