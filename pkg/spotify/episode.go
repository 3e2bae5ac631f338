package spotify

import (
	"context"
	"encoding/json"
	"time"
)

// Episode is a podcast episode.
type Episode struct {
	Base

	Name                 string
	Description          string
	AudioPreviewURL      string
	DurationMS           int
	Explicit             bool
	IsPlayable           Field[bool]
	Languages            []string
	Images               []Image
	ReleaseDate          string
	ReleaseDatePrecision string
	// ResumePoint is only set with the user-read-playback-position scope.
	ResumePoint *ResumePoint

	show Field[*Show]
}

func (e *Episode) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		Name                 string       `json:"name"`
		Description          string       `json:"description"`
		AudioPreviewURL      string       `json:"audio_preview_url"`
		DurationMS           int          `json:"duration_ms"`
		Explicit             bool         `json:"explicit"`
		IsPlayable           Field[bool]  `json:"is_playable"`
		Languages            []string     `json:"languages"`
		Images               []Image      `json:"images"`
		ReleaseDate          string       `json:"release_date"`
		ReleaseDatePrecision string       `json:"release_date_precision"`
		ResumePoint          *ResumePoint `json:"resume_point"`
		Show                 Field[*Show] `json:"show"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.Base.assign(w.baseJSON, KindEpisode)
	e.Name = w.Name
	e.Description = w.Description
	e.AudioPreviewURL = w.AudioPreviewURL
	e.DurationMS = w.DurationMS
	e.Explicit = w.Explicit
	e.IsPlayable = w.IsPlayable
	e.Languages = w.Languages
	e.Images = w.Images
	e.ReleaseDate = w.ReleaseDate
	e.ReleaseDatePrecision = w.ReleaseDatePrecision
	e.ResumePoint = w.ResumePoint
	e.show = w.Show
	return nil
}

func (e *Episode) bind(c *Client, subject string) {
	e.Base.bind(c, subject)
	if e.show.Valid && e.show.Value != nil {
		e.show.Value.bind(c, subject)
	}
}

// Show returns the show the episode belongs to. Episodes listed from a show
// lack it and are completed on first access.
func (e *Episode) Show(ctx context.Context) (Field[*Show], error) {
	return lazy(ctx, e, &e.show)
}

// Duration returns the episode length.
func (e *Episode) Duration() time.Duration {
	return time.Duration(e.DurationMS) * time.Millisecond
}

// FindEpisode fetches one episode.
func (c *Client) FindEpisode(ctx context.Context, id string, opts *FindOptions) (*Episode, error) {
	return findAs[*Episode](ctx, c, KindEpisode, id, opts)
}

// FindEpisodes fetches several episodes, preserving order.
func (c *Client) FindEpisodes(ctx context.Context, ids []string, opts *FindOptions) ([]*Episode, error) {
	return findManyAs[*Episode](ctx, c, KindEpisode, ids, opts)
}
