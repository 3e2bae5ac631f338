package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Kind discriminates entity types.
type Kind string

// Kinds match the "type" field of Web API objects.
const (
	KindAlbum    Kind = "album"
	KindArtist   Kind = "artist"
	KindTrack    Kind = "track"
	KindPlaylist Kind = "playlist"
	KindUser     Kind = "user"
	KindShow     Kind = "show"
	KindEpisode  Kind = "episode"
	// Categories carry no type field on the wire.
	KindCategory Kind = "category"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindAlbum, KindArtist, KindTrack, KindPlaylist, KindUser, KindShow, KindEpisode, KindCategory}

// collection is the pluralized resource name used in paths and response keys.
func (k Kind) collection() string {
	if k == KindCategory {
		return "categories"
	}
	return string(k) + "s"
}

// resource is the path of one entity of kind k.
func (k Kind) resource(id string) string {
	if k == KindCategory {
		return "browse/categories/" + id
	}
	return k.collection() + "/" + id
}

func (k Kind) valid() bool {
	switch k {
	case KindAlbum, KindArtist, KindTrack, KindPlaylist, KindUser, KindShow, KindEpisode, KindCategory:
		return true
	}
	return false
}

// ParseKind converts s to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// ParseKinds converts a comma separated list such as "album, track".
func ParseKinds(s string) ([]Kind, error) {
	var kinds []Kind
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Entity is implemented by every catalogue and account type of the package.
type Entity interface {
	Kind() Kind
	ID() string
	URI() string
	Href() string
	ExternalURLs() map[string]string

	base() *Base
	resourcePath() string
	bind(c *Client, subject string)
}

var (
	_ Entity = (*Album)(nil)
	_ Entity = (*Artist)(nil)
	_ Entity = (*Track)(nil)
	_ Entity = (*Playlist)(nil)
	_ Entity = (*User)(nil)
	_ Entity = (*Show)(nil)
	_ Entity = (*Episode)(nil)
	_ Entity = (*Category)(nil)
)

// Base holds the attributes shared by every entity and its completion state.
// Entities are not safe for concurrent use.
type Base struct {
	externalURLs map[string]string
	href         string
	id           string
	kind         Kind
	uri          string

	client    *Client
	subject   string
	completed bool
}

// baseJSON is the wire form of Base.
type baseJSON struct {
	ExternalURLs map[string]string `json:"external_urls"`
	Href         string            `json:"href"`
	ID           string            `json:"id"`
	Type         Kind              `json:"type"`
	URI          string            `json:"uri"`
}

func (b *Base) assign(w baseJSON, kind Kind) {
	b.externalURLs = w.ExternalURLs
	b.href = w.Href
	b.id = w.ID
	b.uri = w.URI
	b.kind = w.Type
	if b.kind == "" {
		b.kind = kind
	}
}

// ID is the Spotify id, or the category id for categories.
func (b *Base) ID() string { return b.id }

// Kind is the entity type.
func (b *Base) Kind() Kind { return b.kind }

// URI is the spotify: URI. Categories have none.
func (b *Base) URI() string { return b.uri }

// Href is the Web API endpoint of the full representation.
func (b *Base) Href() string { return b.href }

// ExternalURLs maps a service such as "spotify" to a public URL.
func (b *Base) ExternalURLs() map[string]string { return b.externalURLs }

// Completed reports whether the full representation has been loaded.
func (b *Base) Completed() bool { return b.completed }

func (b *Base) base() *Base { return b }

func (b *Base) resourcePath() string {
	return b.kind.resource(b.id)
}

func (b *Base) bind(c *Client, subject string) {
	b.client = c
	b.subject = subject
}

// complete fetches the full representation of e and overwrites its fields.
// It runs at most once per entity; an entity without id, without client, or
// read while raw-response mode is on is left untouched.
func (b *Base) complete(ctx context.Context, e Entity) error {
	if b.completed || b.id == "" || b.client == nil || b.client.RawResponse() {
		return nil
	}
	c, subject, path := b.client, b.subject, e.resourcePath()

	c.logger.WithFields(logrus.Fields{
		"component": "entity",
		"operation": "complete",
		"kind":      b.kind,
		"id":        b.id,
	}).Debug("Completing simplified entity")

	data, err := c.ResolveRequest(ctx, subject, path)
	if err != nil {
		return err
	}
	ok, err := decode(path, data, e)
	if err != nil {
		return err
	}
	if ok {
		e.bind(c, subject)
	}
	b.completed = true
	return nil
}

// lazy returns *f, completing e first when f was never loaded.
func lazy[T any](ctx context.Context, e Entity, f *Field[T]) (Field[T], error) {
	if !f.Valid {
		if err := e.base().complete(ctx, e); err != nil {
			return *f, err
		}
	}
	return *f, nil
}

func newEntity(kind Kind) (Entity, error) {
	switch kind {
	case KindAlbum:
		return &Album{}, nil
	case KindArtist:
		return &Artist{}, nil
	case KindTrack:
		return &Track{}, nil
	case KindPlaylist:
		return &Playlist{}, nil
	case KindUser:
		return &User{}, nil
	case KindShow:
		return &Show{}, nil
	case KindEpisode:
		return &Episode{}, nil
	case KindCategory:
		return &Category{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// decodeEntity builds an entity of kind from one JSON object. A null object
// yields nil.
func (c *Client) decodeEntity(kind Kind, raw json.RawMessage, subject string) (Entity, error) {
	if isNull(raw) {
		return nil, nil
	}
	e, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, e); err != nil {
		return nil, err
	}
	e.bind(c, subject)
	return e, nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// Market selects the regional catalogue. The zero value applies no filter.
type Market struct {
	Code    string
	Subject string
}

// MarketCode filters by an ISO 3166-1 alpha-2 country code.
func MarketCode(code string) Market {
	return Market{Code: code}
}

// FromUser filters by the country of the authenticated user subject. Requests
// using it are sent with that user's credentials.
func FromUser(subject string) Market {
	return Market{Subject: subject}
}

func (m Market) value() string {
	if m.Subject != "" {
		return "from_token"
	}
	return m.Code
}

// get sends a GET for a catalogue path, with the user's credentials when the
// market delegates to a user.
func (c *Client) get(ctx context.Context, path string, m Market) ([]byte, error) {
	if m.Subject != "" {
		return c.DispatchAuthenticated(ctx, m.Subject, GET, path, nil)
	}
	return c.request(ctx, GET, path, nil)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// FindOptions modifies Find and FindMany.
type FindOptions struct {
	Market Market
}

func (o *FindOptions) market() Market {
	if o == nil {
		return Market{}
	}
	return o.Market
}

// Find fetches the full representation of one entity. It returns nil, nil
// when the response body is empty.
func (c *Client) Find(ctx context.Context, kind Kind, id string, opts *FindOptions) (Entity, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	q := url.Values{}
	m := opts.market()
	switch v := m.value(); {
	case kind == KindUser:
	case kind == KindCategory:
		// Categories are filtered by country and have no from_token form.
		if m.Code != "" {
			q.Set("country", m.Code)
		}
	case v != "":
		q.Set("market", v)
	}
	path := withQuery(kind.resource(url.PathEscape(id)), q)

	data, err := c.get(ctx, path, m)
	if err != nil {
		return nil, err
	}
	if c.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	e, err := newEntity(kind)
	if err != nil {
		return nil, err
	}
	ok, err := decode(path, data, e)
	if err != nil || !ok {
		return nil, err
	}
	e.bind(c, m.Subject)
	e.base().completed = true
	return e, nil
}

// FindMany fetches several entities of one kind in a single request. The
// result has one element per id, in order; an id the Web API does not know
// yields a nil element. Users, playlists and categories cannot be fetched in
// bulk.
func (c *Client) FindMany(ctx context.Context, kind Kind, ids []string, opts *FindOptions) ([]Entity, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if kind == KindUser || kind == KindPlaylist || kind == KindCategory {
		c.logger.WithFields(logrus.Fields{
			"component": "entity",
			"operation": "find_many",
			"kind":      kind,
		}).Warn("Batched lookup is not supported for this kind")
		return nil, &UnsupportedError{Op: "batch", Kind: kind}
	}
	if len(ids) == 0 {
		return []Entity{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	m := opts.market()
	if v := m.value(); v != "" {
		q.Set("market", v)
	}
	path := withQuery(kind.collection(), q)

	data, err := c.get(ctx, path, m)
	if err != nil {
		return nil, err
	}
	if c.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}

	var resp map[string][]json.RawMessage
	ok, err := decode(path, data, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, len(ids))
	if !ok {
		return out, nil
	}

	items := resp[kind.collection()]
	found := make([]Entity, 0, len(items))
	for _, raw := range items {
		e, err := c.decodeEntity(kind, raw, m.Subject)
		if err != nil {
			return nil, malformed(path, err)
		}
		if e != nil {
			e.base().completed = true
		}
		found = append(found, e)
	}

	if len(found) == len(ids) {
		copy(out, found)
		return out, nil
	}
	// The response did not line up with the request; match by id.
	byID := make(map[string]Entity, len(found))
	for _, e := range found {
		if e != nil {
			byID[e.ID()] = e
		}
	}
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out, nil
}

func findAs[T Entity](ctx context.Context, c *Client, kind Kind, id string, opts *FindOptions) (T, error) {
	var zero T
	e, err := c.Find(ctx, kind, id, opts)
	if err != nil || e == nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T for %s", ErrMalformedResponse, e, kind)
	}
	return t, nil
}

func findManyAs[T Entity](ctx context.Context, c *Client, kind Kind, ids []string, opts *FindOptions) ([]T, error) {
	es, err := c.FindMany(ctx, kind, ids, opts)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(es))
	for i, e := range es {
		if e == nil {
			continue
		}
		t, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("%w: got %T for %s", ErrMalformedResponse, e, kind)
		}
		out[i] = t
	}
	return out, nil
}

// FindAlbum fetches one album.
func (c *Client) FindAlbum(ctx context.Context, id string, opts *FindOptions) (*Album, error) {
	return findAs[*Album](ctx, c, KindAlbum, id, opts)
}

// FindAlbums fetches several albums, preserving order.
func (c *Client) FindAlbums(ctx context.Context, ids []string, opts *FindOptions) ([]*Album, error) {
	return findManyAs[*Album](ctx, c, KindAlbum, ids, opts)
}

// FindArtist fetches one artist.
func (c *Client) FindArtist(ctx context.Context, id string) (*Artist, error) {
	return findAs[*Artist](ctx, c, KindArtist, id, nil)
}

// FindArtists fetches several artists, preserving order.
func (c *Client) FindArtists(ctx context.Context, ids []string) ([]*Artist, error) {
	return findManyAs[*Artist](ctx, c, KindArtist, ids, nil)
}

// FindTrack fetches one track.
func (c *Client) FindTrack(ctx context.Context, id string, opts *FindOptions) (*Track, error) {
	return findAs[*Track](ctx, c, KindTrack, id, opts)
}

// FindTracks fetches several tracks, preserving order.
func (c *Client) FindTracks(ctx context.Context, ids []string, opts *FindOptions) ([]*Track, error) {
	return findManyAs[*Track](ctx, c, KindTrack, ids, opts)
}

// FindUser fetches the public profile of a user.
func (c *Client) FindUser(ctx context.Context, id string) (*User, error) {
	return findAs[*User](ctx, c, KindUser, id, nil)
}

// FindPlaylist fetches a playlist. The owner's credentials are used when
// registered, so private playlists of known users can be read.
func (c *Client) FindPlaylist(ctx context.Context, ownerID, id string) (*Playlist, error) {
	path := "playlists/" + url.PathEscape(id)
	data, err := c.ResolveRequest(ctx, ownerID, path)
	if err != nil {
		return nil, err
	}
	if c.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	p := &Playlist{}
	ok, err := decode(path, data, p)
	if err != nil || !ok {
		return nil, err
	}
	p.bind(c, ownerID)
	p.completed = true
	return p, nil
}
