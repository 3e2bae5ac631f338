package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// User is a Spotify account. Operations on a user's library, follows and
// playback send requests with that user's registered credentials.
type User struct {
	Base

	DisplayName string

	country   Field[string]
	email     Field[string]
	product   Field[string]
	followers Field[Followers]
	images    Field[[]Image]
}

func (u *User) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		DisplayName string           `json:"display_name"`
		Country     Field[string]    `json:"country"`
		Email       Field[string]    `json:"email"`
		Product     Field[string]    `json:"product"`
		Followers   Field[Followers] `json:"followers"`
		Images      Field[[]Image]   `json:"images"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	u.Base.assign(w.baseJSON, KindUser)
	u.DisplayName = w.DisplayName
	u.country = w.Country
	u.email = w.Email
	u.product = w.Product
	u.followers = w.Followers
	u.images = w.Images
	return nil
}

// bind always uses the user's own id as subject.
func (u *User) bind(c *Client, _ string) {
	u.Base.bind(c, u.id)
}

// Country is only present for the authorizing user with the
// user-read-private scope.
func (u *User) Country(ctx context.Context) (Field[string], error) {
	return lazy(ctx, u, &u.country)
}

// Email is only present for the authorizing user with the user-read-email
// scope.
func (u *User) Email(ctx context.Context) (Field[string], error) {
	return lazy(ctx, u, &u.email)
}

// Product is the subscription level, such as premium or free. It needs
// the user-read-private scope.
func (u *User) Product(ctx context.Context) (Field[string], error) {
	return lazy(ctx, u, &u.product)
}

// Followers is the user's follower count.
func (u *User) Followers(ctx context.Context) (Field[Followers], error) {
	return lazy(ctx, u, &u.followers)
}

// Images holds the profile picture.
func (u *User) Images(ctx context.Context) (Field[[]Image], error) {
	return lazy(ctx, u, &u.images)
}

func (u *User) dispatch(ctx context.Context, verb Verb, path string, body any) ([]byte, error) {
	if u.client == nil {
		return nil, ErrAuthenticationRequired
	}
	return u.client.DispatchAuthenticated(ctx, u.id, verb, path, body)
}

// write sends a request whose response carries no data the caller needs.
func (u *User) write(ctx context.Context, verb Verb, path string, body any) error {
	data, err := u.dispatch(ctx, verb, path, body)
	if err != nil {
		return err
	}
	if u.client.RawResponse() {
		return &RawResponse{Path: path, Body: data}
	}
	return nil
}

func idsQuery(path string, ids []string) string {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	return withQuery(path, q)
}

// NewPlaylist describes a playlist to create.
type NewPlaylist struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
}

// CreatePlaylist creates a playlist owned by u. A collaborative playlist must
// not be public.
func (u *User) CreatePlaylist(ctx context.Context, np NewPlaylist) (*Playlist, error) {
	path := "users/" + url.PathEscape(u.id) + "/playlists"
	data, err := u.dispatch(ctx, POST, path, np)
	if err != nil {
		return nil, err
	}
	if u.client.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	p := &Playlist{}
	ok, err := decode(path, data, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, malformed(path, fmt.Errorf("empty playlist"))
	}
	p.bind(u.client, u.id)
	p.completed = true
	return p, nil
}

// Playlists returns a page of the user's playlists.
func (u *User) Playlists(ctx context.Context, opts *PageOptions) (*Page[*Playlist], error) {
	if u.client == nil {
		return nil, ErrAuthenticationRequired
	}
	c := u.client
	pg := &pager[*Playlist]{
		client:  c,
		fetch:   c.resolvedFetch(u.id),
		extract: entityItem(c, u.id, func() *Playlist { return &Playlist{} }),
	}
	return pg.load(ctx, withQuery("users/"+url.PathEscape(u.id)+"/playlists", opts.values()))
}

func (u *User) trackPage(ctx context.Context, path string, opts *PageOptions, extract func(*Client, string) func(json.RawMessage) (*Track, error)) (*Page[*Track], error) {
	if u.client == nil {
		return nil, ErrAuthenticationRequired
	}
	c := u.client
	pg := &pager[*Track]{
		client:  c,
		fetch:   c.userFetch(u.id),
		extract: extract(c, u.id),
	}
	return pg.load(ctx, withQuery(path, opts.values()))
}

// SavedTracks returns a page of the user's library tracks with AddedAt set.
func (u *User) SavedTracks(ctx context.Context, opts *PageOptions) (*Page[*Track], error) {
	return u.trackPage(ctx, "me/tracks", opts, savedTrackItem)
}

// SaveTracks adds tracks to the user's library.
func (u *User) SaveTracks(ctx context.Context, ids []string) error {
	return u.write(ctx, PUT, idsQuery("me/tracks", ids), nil)
}

// RemoveSavedTracks removes tracks from the user's library.
func (u *User) RemoveSavedTracks(ctx context.Context, ids []string) error {
	return u.write(ctx, DELETE, idsQuery("me/tracks", ids), nil)
}

// ContainsSavedTracks reports, per id, whether the track is in the library.
func (u *User) ContainsSavedTracks(ctx context.Context, ids []string) ([]bool, error) {
	return u.contains(ctx, idsQuery("me/tracks/contains", ids))
}

// SavedAlbums returns a page of the user's library albums with AddedAt set.
func (u *User) SavedAlbums(ctx context.Context, opts *PageOptions) (*Page[*Album], error) {
	if u.client == nil {
		return nil, ErrAuthenticationRequired
	}
	c := u.client
	pg := &pager[*Album]{
		client:  c,
		fetch:   c.userFetch(u.id),
		extract: savedAlbumItem(c, u.id),
	}
	return pg.load(ctx, withQuery("me/albums", opts.values()))
}

// SaveAlbums adds albums to the user's library.
func (u *User) SaveAlbums(ctx context.Context, ids []string) error {
	return u.write(ctx, PUT, idsQuery("me/albums", ids), nil)
}

// RemoveSavedAlbums removes albums from the user's library.
func (u *User) RemoveSavedAlbums(ctx context.Context, ids []string) error {
	return u.write(ctx, DELETE, idsQuery("me/albums", ids), nil)
}

func followQuery(path string, kind Kind, ids []string) (string, error) {
	if kind != KindArtist && kind != KindUser {
		return "", fmt.Errorf("%w: cannot follow %q", ErrUnknownKind, kind)
	}
	q := url.Values{}
	q.Set("type", string(kind))
	q.Set("ids", strings.Join(ids, ","))
	return withQuery(path, q), nil
}

// Follow follows artists or users.
func (u *User) Follow(ctx context.Context, kind Kind, ids []string) error {
	path, err := followQuery("me/following", kind, ids)
	if err != nil {
		return err
	}
	return u.write(ctx, PUT, path, nil)
}

// Unfollow unfollows artists or users.
func (u *User) Unfollow(ctx context.Context, kind Kind, ids []string) error {
	path, err := followQuery("me/following", kind, ids)
	if err != nil {
		return err
	}
	return u.write(ctx, DELETE, path, nil)
}

// Follows reports, per id, whether the user follows the artist or user.
func (u *User) Follows(ctx context.Context, kind Kind, ids []string) ([]bool, error) {
	path, err := followQuery("me/following/contains", kind, ids)
	if err != nil {
		return nil, err
	}
	return u.contains(ctx, path)
}

// FollowPlaylist follows a playlist, publicly or not.
func (u *User) FollowPlaylist(ctx context.Context, playlistID string, public bool) error {
	return u.write(ctx, PUT, "playlists/"+url.PathEscape(playlistID)+"/followers", map[string]bool{"public": public})
}

// UnfollowPlaylist stops following a playlist.
func (u *User) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	return u.write(ctx, DELETE, "playlists/"+url.PathEscape(playlistID)+"/followers", nil)
}

func (u *User) contains(ctx context.Context, path string) ([]bool, error) {
	data, err := u.dispatch(ctx, GET, path, nil)
	if err != nil {
		return nil, err
	}
	if u.client.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	var out []bool
	if _, err := decode(path, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopOptions selects a window of the user's top items.
type TopOptions struct {
	// TimeRange is long_term, medium_term or short_term.
	TimeRange string
	Limit     int
	Offset    int
}

func (o *TopOptions) values() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}
	if o.TimeRange != "" {
		q.Set("time_range", o.TimeRange)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// TopArtists returns a page of the user's most listened artists.
func (u *User) TopArtists(ctx context.Context, opts *TopOptions) (*Page[*Artist], error) {
	if u.client == nil {
		return nil, ErrAuthenticationRequired
	}
	c := u.client
	pg := &pager[*Artist]{
		client:  c,
		fetch:   c.userFetch(u.id),
		extract: entityItem(c, u.id, func() *Artist { return &Artist{} }),
	}
	return pg.load(ctx, withQuery("me/top/artists", opts.values()))
}

// TopTracks returns a page of the user's most listened tracks.
func (u *User) TopTracks(ctx context.Context, opts *TopOptions) (*Page[*Track], error) {
	if u.client == nil {
		return nil, ErrAuthenticationRequired
	}
	c := u.client
	pg := &pager[*Track]{
		client:  c,
		fetch:   c.userFetch(u.id),
		extract: entityItem(c, u.id, func() *Track { return &Track{} }),
	}
	return pg.load(ctx, withQuery("me/top/tracks", opts.values()))
}

// RecentlyPlayed returns the user's recently played tracks with PlayedAt and
// ContextType set. The page is cursor based; Total and Offset are zero.
func (u *User) RecentlyPlayed(ctx context.Context, limit int) (*Page[*Track], error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if u.client == nil {
		return nil, ErrAuthenticationRequired
	}
	c := u.client
	pg := &pager[*Track]{
		client:  c,
		fetch:   c.userFetch(u.id),
		extract: playedTrackItem(c, u.id),
	}
	return pg.load(ctx, withQuery("me/player/recently-played", q))
}

// Devices lists the user's available playback devices.
func (u *User) Devices(ctx context.Context) ([]Device, error) {
	const path = "me/player/devices"
	data, err := u.dispatch(ctx, GET, path, nil)
	if err != nil {
		return nil, err
	}
	if u.client.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	var resp struct {
		Devices []Device `json:"devices"`
	}
	if _, err := decode(path, data, &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// Player controls the user's playback.
func (u *User) Player() *Player {
	return &Player{user: u}
}
