package spotify

import (
	"context"
	"encoding/json"
	"time"
)

// Track is a catalogue track.
type Track struct {
	Base

	Name             string
	Artists          []*Artist
	AvailableMarkets []string
	DiscNumber       int
	DurationMS       int
	Explicit         bool
	IsPlayable       Field[bool]
	PreviewURL       string
	TrackNumber      int
	// LinkedFrom is set when track relinking replaced the requested track.
	LinkedFrom *TrackLink

	// AddedAt is set for tracks listed from a playlist or a user's library.
	AddedAt time.Time
	// PlayedAt and ContextType are set for recently played tracks.
	PlayedAt    time.Time
	ContextType string

	album       Field[*Album]
	externalIDs Field[map[string]string]
	popularity  Field[int]
}

func (t *Track) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		Name             string                   `json:"name"`
		Artists          []*Artist                `json:"artists"`
		AvailableMarkets []string                 `json:"available_markets"`
		DiscNumber       int                      `json:"disc_number"`
		DurationMS       int                      `json:"duration_ms"`
		Explicit         bool                     `json:"explicit"`
		IsPlayable       Field[bool]              `json:"is_playable"`
		PreviewURL       string                   `json:"preview_url"`
		TrackNumber      int                      `json:"track_number"`
		LinkedFrom       *TrackLink               `json:"linked_from"`
		Album            Field[*Album]            `json:"album"`
		ExternalIDs      Field[map[string]string] `json:"external_ids"`
		Popularity       Field[int]               `json:"popularity"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.Base.assign(w.baseJSON, KindTrack)
	t.Name = w.Name
	t.Artists = w.Artists
	t.AvailableMarkets = w.AvailableMarkets
	t.DiscNumber = w.DiscNumber
	t.DurationMS = w.DurationMS
	t.Explicit = w.Explicit
	t.IsPlayable = w.IsPlayable
	t.PreviewURL = w.PreviewURL
	t.TrackNumber = w.TrackNumber
	t.LinkedFrom = w.LinkedFrom
	t.album = w.Album
	t.externalIDs = w.ExternalIDs
	t.popularity = w.Popularity
	return nil
}

func (t *Track) bind(c *Client, subject string) {
	t.Base.bind(c, subject)
	for _, a := range t.Artists {
		if a != nil {
			a.bind(c, subject)
		}
	}
	if t.album.Valid && t.album.Value != nil {
		t.album.Value.bind(c, subject)
	}
}

// Album returns the album the track appears on.
func (t *Track) Album(ctx context.Context) (Field[*Album], error) {
	return lazy(ctx, t, &t.album)
}

// ExternalIDs maps an identifier type such as "isrc" to its value.
func (t *Track) ExternalIDs(ctx context.Context) (Field[map[string]string], error) {
	return lazy(ctx, t, &t.externalIDs)
}

// Popularity is between 0 and 100.
func (t *Track) Popularity(ctx context.Context) (Field[int], error) {
	return lazy(ctx, t, &t.popularity)
}

// Duration returns the track length.
func (t *Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// ArtistNames returns the names of the track's artists in order.
func (t *Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a != nil {
			names = append(names, a.Name)
		}
	}
	return names
}
