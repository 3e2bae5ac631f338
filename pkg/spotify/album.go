package spotify

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

// Album is a catalogue album. Search results and nested albums are
// simplified; reading an attribute they lack loads the full album.
type Album struct {
	Base

	AlbumType            string
	Name                 string
	Artists              []*Artist
	AvailableMarkets     []string
	Images               []Image
	ReleaseDate          string
	ReleaseDatePrecision string
	TotalTracks          int

	// AddedAt is set for albums listed from a user's library.
	AddedAt time.Time

	copyrights  Field[[]Copyright]
	externalIDs Field[map[string]string]
	genres      Field[[]string]
	label       Field[string]
	popularity  Field[int]
	tracks      json.RawMessage
}

// UnmarshalJSON decodes a full or simplified album.
func (a *Album) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		AlbumType            string                   `json:"album_type"`
		Name                 string                   `json:"name"`
		Artists              []*Artist                `json:"artists"`
		AvailableMarkets     []string                 `json:"available_markets"`
		Images               []Image                  `json:"images"`
		ReleaseDate          string                   `json:"release_date"`
		ReleaseDatePrecision string                   `json:"release_date_precision"`
		TotalTracks          int                      `json:"total_tracks"`
		Copyrights           Field[[]Copyright]       `json:"copyrights"`
		ExternalIDs          Field[map[string]string] `json:"external_ids"`
		Genres               Field[[]string]          `json:"genres"`
		Label                Field[string]            `json:"label"`
		Popularity           Field[int]               `json:"popularity"`
		Tracks               json.RawMessage          `json:"tracks"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.Base.assign(w.baseJSON, KindAlbum)
	a.AlbumType = w.AlbumType
	a.Name = w.Name
	a.Artists = w.Artists
	a.AvailableMarkets = w.AvailableMarkets
	a.Images = w.Images
	a.ReleaseDate = w.ReleaseDate
	a.ReleaseDatePrecision = w.ReleaseDatePrecision
	a.TotalTracks = w.TotalTracks
	a.copyrights = w.Copyrights
	a.externalIDs = w.ExternalIDs
	a.genres = w.Genres
	a.label = w.Label
	a.popularity = w.Popularity
	a.tracks = w.Tracks
	return nil
}

func (a *Album) bind(c *Client, subject string) {
	a.Base.bind(c, subject)
	for _, ar := range a.Artists {
		if ar != nil {
			ar.bind(c, subject)
		}
	}
}

// Copyrights lists the copyright statements of the album.
func (a *Album) Copyrights(ctx context.Context) (Field[[]Copyright], error) {
	return lazy(ctx, a, &a.copyrights)
}

// ExternalIDs maps an identifier type such as "upc" to its value.
func (a *Album) ExternalIDs(ctx context.Context) (Field[map[string]string], error) {
	return lazy(ctx, a, &a.externalIDs)
}

// Genres is often empty; Spotify assigns genres to artists.
func (a *Album) Genres(ctx context.Context) (Field[[]string], error) {
	return lazy(ctx, a, &a.genres)
}

// Label is the record label.
func (a *Album) Label(ctx context.Context) (Field[string], error) {
	return lazy(ctx, a, &a.label)
}

// Popularity is between 0 and 100.
func (a *Album) Popularity(ctx context.Context) (Field[int], error) {
	return lazy(ctx, a, &a.popularity)
}

// Tracks returns a page of the album's tracks. With nil opts the first page
// embedded in a full album is reused when present.
func (a *Album) Tracks(ctx context.Context, opts *PageOptions) (*Page[*Track], error) {
	c := a.client
	if c == nil {
		return nil, ErrAuthenticationRequired
	}
	fetch := c.resolvedFetch(a.subject)
	if m := opts.market(); m.Subject != "" {
		fetch = c.marketFetch(m)
	}
	pg := &pager[*Track]{
		client:  c,
		fetch:   fetch,
		extract: entityItem(c, a.subject, func() *Track { return &Track{} }),
	}
	if opts == nil && !isNull(a.tracks) && !c.RawResponse() {
		return pg.parse(a.resourcePath()+"/tracks", a.tracks)
	}
	return pg.load(ctx, withQuery("albums/"+url.PathEscape(a.id)+"/tracks", opts.values()))
}

// NewReleases returns a page of newly released albums.
func (c *Client) NewReleases(ctx context.Context, opts *BrowseOptions) (*Page[*Album], error) {
	pg := &pager[*Album]{
		client:  c,
		fetch:   c.anonymousFetch(),
		extract: entityItem(c, "", func() *Album { return &Album{} }),
		root:    "albums",
	}
	return pg.load(ctx, withQuery("browse/new-releases", opts.values()))
}
