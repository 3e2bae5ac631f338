package spotify

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Playlist is a user playlist. Requests for a playlist use its owner's
// credentials when they are registered.
type Playlist struct {
	Base

	Name          string
	Collaborative bool
	Description   string
	Images        []Image
	Owner         *User
	Public        Field[bool]
	SnapshotID    string
	// TracksTotal is the number of tracks in the playlist.
	TracksTotal int

	followers Field[Followers]
	tracks    json.RawMessage
}

func (p *Playlist) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		Name          string           `json:"name"`
		Collaborative bool             `json:"collaborative"`
		Description   string           `json:"description"`
		Images        []Image          `json:"images"`
		Owner         *User            `json:"owner"`
		Public        Field[bool]      `json:"public"`
		SnapshotID    string           `json:"snapshot_id"`
		Followers     Field[Followers] `json:"followers"`
		Tracks        json.RawMessage  `json:"tracks"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Base.assign(w.baseJSON, KindPlaylist)
	p.Name = w.Name
	p.Collaborative = w.Collaborative
	p.Description = w.Description
	p.Images = w.Images
	p.Owner = w.Owner
	p.Public = w.Public
	p.SnapshotID = w.SnapshotID
	p.followers = w.Followers
	p.tracks = nil
	p.TracksTotal = 0

	if !isNull(w.Tracks) {
		var tr struct {
			Total int               `json:"total"`
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(w.Tracks, &tr); err != nil {
			return err
		}
		p.TracksTotal = tr.Total
		// A simplified playlist only carries {href, total}.
		if tr.Items != nil {
			p.tracks = w.Tracks
		}
	}
	return nil
}

func (p *Playlist) resourcePath() string {
	return "playlists/" + url.PathEscape(p.id)
}

// bind uses the owner as subject, falling back to subject when the owner is
// unknown.
func (p *Playlist) bind(c *Client, subject string) {
	if p.Owner != nil && p.Owner.ID() != "" {
		p.Owner.bind(c, p.Owner.ID())
		subject = p.Owner.ID()
	}
	p.Base.bind(c, subject)
}

// Followers is the playlist's follower count.
func (p *Playlist) Followers(ctx context.Context) (Field[Followers], error) {
	return lazy(ctx, p, &p.followers)
}

// Tracks returns a page of the playlist's tracks with their AddedAt set. With
// nil opts the first page embedded in a full playlist is reused when present.
// Entries whose track is no longer available are nil.
func (p *Playlist) Tracks(ctx context.Context, opts *PageOptions) (*Page[*Track], error) {
	c := p.client
	if c == nil {
		return nil, ErrAuthenticationRequired
	}
	fetch := c.resolvedFetch(p.subject)
	if m := opts.market(); m.Subject != "" {
		fetch = c.marketFetch(m)
	}
	pg := &pager[*Track]{
		client:  c,
		fetch:   fetch,
		extract: savedTrackItem(c, p.subject),
	}
	if opts == nil && p.tracks != nil && !c.RawResponse() {
		return pg.parse(p.resourcePath()+"/tracks", p.tracks)
	}
	return pg.load(ctx, withQuery(p.resourcePath()+"/tracks", opts.values()))
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// AddTracks inserts tracks by URI. A nil position appends. It returns the
// new snapshot id.
func (p *Playlist) AddTracks(ctx context.Context, uris []string, position *int) (string, error) {
	body := map[string]any{"uris": uris}
	if position != nil {
		body["position"] = *position
	}
	return p.modifyTracks(ctx, POST, body, len(uris))
}

// RemoveTracks removes every occurrence of the given track URIs. When
// snapshotID is set the removal applies to that version of the playlist.
func (p *Playlist) RemoveTracks(ctx context.Context, uris []string, snapshotID string) (string, error) {
	tracks := make([]map[string]string, 0, len(uris))
	for _, u := range uris {
		tracks = append(tracks, map[string]string{"uri": u})
	}
	body := map[string]any{"tracks": tracks}
	if snapshotID != "" {
		body["snapshot_id"] = snapshotID
	}
	return p.modifyTracks(ctx, DELETE, body, -len(uris))
}

func (p *Playlist) modifyTracks(ctx context.Context, verb Verb, body map[string]any, delta int) (string, error) {
	c := p.client
	if c == nil {
		return "", ErrAuthenticationRequired
	}
	path := p.resourcePath() + "/tracks"
	data, err := c.DispatchAuthenticated(ctx, p.subject, verb, path, body)
	if err != nil {
		return "", err
	}
	if c.RawResponse() {
		return "", &RawResponse{Path: path, Body: data}
	}
	var resp snapshotResponse
	if _, err := decode(path, data, &resp); err != nil {
		return "", err
	}
	if resp.SnapshotID != "" {
		p.SnapshotID = resp.SnapshotID
	}
	p.TracksTotal = max(p.TracksTotal+delta, 0)
	// The embedded page no longer matches the playlist.
	p.tracks = nil

	c.logger.WithFields(logrus.Fields{
		"component": "playlist",
		"operation": string(verb),
		"playlist":  p.id,
		"count":     abs(delta),
	}).Debug("Modified playlist tracks")
	return p.SnapshotID, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// PlaylistDetails lists playlist attributes to change. Nil fields are left
// untouched.
type PlaylistDetails struct {
	Name          *string `json:"name,omitempty"`
	Public        *bool   `json:"public,omitempty"`
	Collaborative *bool   `json:"collaborative,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// ChangeDetails updates the playlist and mirrors the change on p.
func (p *Playlist) ChangeDetails(ctx context.Context, d PlaylistDetails) error {
	c := p.client
	if c == nil {
		return ErrAuthenticationRequired
	}
	path := p.resourcePath()
	data, err := c.DispatchAuthenticated(ctx, p.subject, PUT, path, d)
	if err != nil {
		return err
	}
	if c.RawResponse() {
		return &RawResponse{Path: path, Body: data}
	}
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Public != nil {
		p.Public = Field[bool]{Value: *d.Public, Valid: true}
	}
	if d.Collaborative != nil {
		p.Collaborative = *d.Collaborative
	}
	if d.Description != nil {
		p.Description = *d.Description
	}
	return nil
}
