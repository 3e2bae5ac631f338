// Package search matches free-form artist, track and album names to
// catalogue tracks and scores how confident each match is.
package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/toozej/spotigo/internal/types"
)

// Confidence weights of the three parts of a match.
const (
	artistWeight = 0.5
	trackWeight  = 0.35
	albumWeight  = 0.15
)

// DefaultCandidates is how many catalogue tracks are scored per query.
const DefaultCandidates = 20

// Query names what to look for. Artist or Track must be set.
type Query struct {
	Artist string `json:"artist"`
	Track  string `json:"track"`
	Album  string `json:"album"`
}

func (q Query) empty() bool {
	return strings.TrimSpace(q.Artist) == "" && strings.TrimSpace(q.Track) == ""
}

// String renders q with the Web API's field filters.
func (q Query) String() string {
	var parts []string
	for _, f := range []struct{ field, value string }{
		{"track", q.Track},
		{"artist", q.Artist},
		{"album", q.Album},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			parts = append(parts, fmt.Sprintf("%s:%q", f.field, v))
		}
	}
	return strings.Join(parts, " ")
}

// Match is a candidate track with confidence scores between 0 and 1.
type Match struct {
	Query             Query       `json:"query"`
	Track             types.Track `json:"track"`
	ArtistConfidence  float64     `json:"artist_confidence"`
	TrackConfidence   float64     `json:"track_confidence"`
	AlbumConfidence   float64     `json:"album_confidence"`
	OverallConfidence float64     `json:"overall_confidence"`
}

// IsHighConfidence returns true if the overall match confidence is at least 0.8
func (m Match) IsHighConfidence() bool {
	return m.OverallConfidence >= 0.8
}

// IsLowConfidence returns true if the overall match confidence is below 0.5
func (m Match) IsLowConfidence() bool {
	return m.OverallConfidence < 0.5
}

// Matcher scores catalogue search results against a Query.
type Matcher struct {
	spotify    types.SpotifyService
	logger     *logrus.Logger
	candidates int
}

// NewMatcher creates a matcher that scores DefaultCandidates tracks per query.
func NewMatcher(spotifyService types.SpotifyService, logger *logrus.Logger) *Matcher {
	return &Matcher{
		spotify:    spotifyService,
		logger:     logger,
		candidates: DefaultCandidates,
	}
}

// WithCandidates sets how many tracks are scored per query.
func (m *Matcher) WithCandidates(n int) *Matcher {
	if n > 0 {
		m.candidates = n
	}
	return m
}

// Best returns the highest scoring match.
func (m *Matcher) Best(ctx context.Context, q Query) (*Match, error) {
	ranked, err := m.Rank(ctx, q)
	if err != nil {
		return nil, err
	}
	best := ranked[0]

	m.logger.WithFields(logrus.Fields{
		"query":              q.String(),
		"matched_track":      best.Track.String(),
		"overall_confidence": best.OverallConfidence,
	}).Info("Found track match")
	if q.Album != "" {
		m.logger.WithFields(logrus.Fields{
			"album_query":       q.Album,
			"matched_album":     best.Track.Album.Name,
			"album_confidence":  best.AlbumConfidence,
			"artist_confidence": best.ArtistConfidence,
			"track_confidence":  best.TrackConfidence,
			"confidence_calculation": fmt.Sprintf("(%.3f * %.2f) + (%.3f * %.2f) + (%.3f * %.2f) = %.3f",
				best.ArtistConfidence, artistWeight, best.TrackConfidence, trackWeight,
				best.AlbumConfidence, albumWeight, best.OverallConfidence),
		}).Debug("Album matching details")
	}
	return &best, nil
}

// Rank scores every candidate for q, best first. Candidates come from a
// field-filtered track search, or from the artist's top tracks when that
// search finds nothing.
func (m *Matcher) Rank(ctx context.Context, q Query) ([]Match, error) {
	if q.empty() {
		return nil, fmt.Errorf("artist or track query is required")
	}
	logger := m.logger.WithField("query", q.String())
	logger.Debug("Starting fuzzy track search")

	tracks, err := m.spotify.SearchTracks(ctx, q.String(), m.candidates)
	if err != nil {
		logger.WithError(err).Error("Failed to search for tracks")
		return nil, fmt.Errorf("failed to search for tracks: %w", err)
	}
	if len(tracks) == 0 && strings.TrimSpace(q.Artist) != "" {
		logger.Debug("Track search found nothing, falling back to artist top tracks")
		tracks, err = m.artistTracks(ctx, q.Artist)
		if err != nil {
			return nil, err
		}
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no tracks found for %s", q)
	}

	matches := make([]Match, len(tracks))
	for i, t := range tracks {
		matches[i] = m.score(q, t)
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.OverallConfidence, a.OverallConfidence)
	})
	return matches, nil
}

func (m *Matcher) artistTracks(ctx context.Context, name string) ([]types.Track, error) {
	artist, err := m.spotify.SearchArtist(ctx, name)
	if err != nil {
		m.logger.WithError(err).WithField("artist_query", name).Error("Failed to search for artist")
		return nil, fmt.Errorf("failed to search for artist: %w", err)
	}
	tracks, err := m.spotify.GetArtistTopTracks(ctx, artist.ID)
	if err != nil {
		m.logger.WithError(err).WithField("artist_id", artist.ID).Error("Failed to get artist tracks")
		return nil, fmt.Errorf("failed to get artist tracks: %w", err)
	}
	return tracks, nil
}

func (m *Matcher) score(q Query, t types.Track) Match {
	match := Match{
		Query:            q,
		Track:            t,
		ArtistConfidence: 1.0,
		TrackConfidence:  1.0,
		AlbumConfidence:  m.albumConfidence(q.Album, t),
	}
	if strings.TrimSpace(q.Artist) != "" {
		match.ArtistConfidence = 0
		for _, a := range t.Artists {
			match.ArtistConfidence = max(match.ArtistConfidence, Confidence(q.Artist, a.Name))
		}
	}
	if strings.TrimSpace(q.Track) != "" {
		match.TrackConfidence = Confidence(q.Track, t.Name)
	}
	match.OverallConfidence = match.ArtistConfidence*artistWeight +
		match.TrackConfidence*trackWeight +
		match.AlbumConfidence*albumWeight
	return match
}

// albumConfidence is neutral when either side has no album.
func (m *Matcher) albumConfidence(albumQuery string, t types.Track) float64 {
	if strings.TrimSpace(albumQuery) == "" || strings.TrimSpace(t.Album.Name) == "" {
		m.logger.WithFields(logrus.Fields{
			"album_query": albumQuery,
			"track_album": t.Album.Name,
		}).Trace("Using neutral album confidence")
		return 0.5
	}
	return Confidence(albumQuery, t.Album.Name)
}

// Confidence scores between 0.1 and 1.0 how well name matches query,
// ignoring case and surrounding space. Substrings score at least 0.7 and
// other fuzzy matches at most 0.7.
func Confidence(query, name string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	n := strings.ToLower(strings.TrimSpace(name))

	switch {
	case q == n:
		return 1.0
	case q == "" || n == "":
		return 0.1
	case strings.Contains(n, q):
		return 0.8 + float64(len(q))/float64(len(n))*0.2
	case strings.Contains(q, n):
		return 0.7 + float64(len(n))/float64(len(q))*0.2
	}

	matches := fuzzy.Find(q, []string{n})
	if len(matches) == 0 {
		return 0.1
	}
	// fuzzy scores grow with consecutive and word-start matches; 2 per
	// query rune is a good match.
	confidence := float64(matches[0].Score) / float64(len(q)*2) * 0.7
	return min(max(confidence, 0.1), 0.7)
}
