package spotify

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// Artist is a catalogue artist. Artists nested in albums and tracks are
// simplified and complete themselves on first access of a missing attribute.
type Artist struct {
	Base

	Name string

	followers  Field[Followers]
	genres     Field[[]string]
	images     Field[[]Image]
	popularity Field[int]

	related   []*Artist
	topTracks map[string][]*Track
}

func (a *Artist) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		Name       string           `json:"name"`
		Followers  Field[Followers] `json:"followers"`
		Genres     Field[[]string]  `json:"genres"`
		Images     Field[[]Image]   `json:"images"`
		Popularity Field[int]       `json:"popularity"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.Base.assign(w.baseJSON, KindArtist)
	a.Name = w.Name
	a.followers = w.Followers
	a.genres = w.Genres
	a.images = w.Images
	a.popularity = w.Popularity
	return nil
}

// Followers is the artist's follower count.
func (a *Artist) Followers(ctx context.Context) (Field[Followers], error) {
	return lazy(ctx, a, &a.followers)
}

// Genres the artist is associated with.
func (a *Artist) Genres(ctx context.Context) (Field[[]string], error) {
	return lazy(ctx, a, &a.genres)
}

// Images of the artist, widest first.
func (a *Artist) Images(ctx context.Context) (Field[[]Image], error) {
	return lazy(ctx, a, &a.images)
}

// Popularity is between 0 and 100.
func (a *Artist) Popularity(ctx context.Context) (Field[int], error) {
	return lazy(ctx, a, &a.popularity)
}

// ArtistAlbumsOptions filters Artist.Albums.
type ArtistAlbumsOptions struct {
	PageOptions
	// IncludeGroups restricts album groups: album, single, appears_on,
	// compilation.
	IncludeGroups []string
}

// Albums returns a page of the artist's albums.
func (a *Artist) Albums(ctx context.Context, opts *ArtistAlbumsOptions) (*Page[*Album], error) {
	c := a.client
	if c == nil {
		return nil, ErrAuthenticationRequired
	}
	q := url.Values{}
	m := Market{}
	if opts != nil {
		q = opts.PageOptions.values()
		m = opts.Market
		if len(opts.IncludeGroups) > 0 {
			q.Set("include_groups", strings.Join(opts.IncludeGroups, ","))
		}
	}
	fetch := c.resolvedFetch(a.subject)
	if m.Subject != "" {
		fetch = c.marketFetch(m)
	}
	pg := &pager[*Album]{
		client:  c,
		fetch:   fetch,
		extract: entityItem(c, a.subject, func() *Album { return &Album{} }),
	}
	return pg.load(ctx, withQuery("artists/"+url.PathEscape(a.id)+"/albums", q))
}

// RelatedArtists returns artists similar to a. The result is cached on a.
func (a *Artist) RelatedArtists(ctx context.Context) ([]*Artist, error) {
	if a.related != nil {
		return a.related, nil
	}
	c := a.client
	if c == nil {
		return nil, ErrAuthenticationRequired
	}
	path := "artists/" + url.PathEscape(a.id) + "/related-artists"
	var resp struct {
		Artists []json.RawMessage `json:"artists"`
	}
	if err := c.fetchInto(ctx, a.subject, path, &resp); err != nil {
		return nil, err
	}
	out := make([]*Artist, 0, len(resp.Artists))
	for _, raw := range resp.Artists {
		e, err := c.decodeEntity(KindArtist, raw, a.subject)
		if err != nil {
			return nil, malformed(path, err)
		}
		if e != nil {
			out = append(out, e.(*Artist))
		}
	}
	a.related = out
	return out, nil
}

// TopTracks returns the artist's most popular tracks in country. Results are
// cached per country.
func (a *Artist) TopTracks(ctx context.Context, country string) ([]*Track, error) {
	if ts, ok := a.topTracks[country]; ok {
		return ts, nil
	}
	c := a.client
	if c == nil {
		return nil, ErrAuthenticationRequired
	}
	q := url.Values{}
	if country != "" {
		q.Set("country", country)
	}
	path := withQuery("artists/"+url.PathEscape(a.id)+"/top-tracks", q)
	var resp struct {
		Tracks []json.RawMessage `json:"tracks"`
	}
	if err := c.fetchInto(ctx, a.subject, path, &resp); err != nil {
		return nil, err
	}
	out := make([]*Track, 0, len(resp.Tracks))
	for _, raw := range resp.Tracks {
		e, err := c.decodeEntity(KindTrack, raw, a.subject)
		if err != nil {
			return nil, malformed(path, err)
		}
		if e != nil {
			out = append(out, e.(*Track))
		}
	}
	if a.topTracks == nil {
		a.topTracks = make(map[string][]*Track)
	}
	a.topTracks[country] = out
	return out, nil
}

// fetchInto GETs path with subject's credentials when registered and decodes
// the body into v. It returns a *RawResponse in raw-response mode.
func (c *Client) fetchInto(ctx context.Context, subject, path string, v any) error {
	data, err := c.ResolveRequest(ctx, subject, path)
	if err != nil {
		return err
	}
	if c.RawResponse() {
		return &RawResponse{Path: path, Body: data}
	}
	_, err = decode(path, data, v)
	return err
}
