package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// SearchResults holds the entities matched by a search, in the order of
// the requested kinds, and the sum of the per-kind totals.
type SearchResults[T any] struct {
	Items []T
	Total int
}

// SearchOptions controls paging and market of a search.
type SearchOptions struct {
	Limit  int
	Offset int
	Market Market
}

// Search looks up query across kinds with a single request. Searching for
// users or categories is not supported by the Web API and returns an
// *UnsupportedError without sending a request.
func (c *Client) Search(ctx context.Context, query string, kinds []Kind, opts *SearchOptions) (*SearchResults[Entity], error) {
	if len(kinds) == 0 {
		return nil, errors.New("spotify: search needs at least one kind")
	}
	types := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if !k.valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
		if k == KindUser || k == KindCategory {
			c.logger.WithFields(logrus.Fields{
				"component": "entity",
				"operation": "search",
				"kind":      k,
			}).Warn("Search is not supported for this kind")
			return nil, &UnsupportedError{Op: "search", Kind: k}
		}
		types = append(types, string(k))
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", strings.Join(types, ","))
	var m Market
	if opts != nil {
		if opts.Limit > 0 {
			q.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			q.Set("offset", strconv.Itoa(opts.Offset))
		}
		m = opts.Market
		if v := m.value(); v != "" {
			q.Set("market", v)
		}
	}
	path := withQuery("search", q)

	data, err := c.get(ctx, path, m)
	if err != nil {
		return nil, err
	}
	if c.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}

	var resp map[string]pageJSON
	res := &SearchResults[Entity]{}
	ok, err := decode(path, data, &resp)
	if err != nil || !ok {
		return res, err
	}
	for _, k := range kinds {
		part, found := resp[k.collection()]
		if !found {
			continue
		}
		res.Total += part.Total
		for _, raw := range part.Items {
			e, err := c.decodeEntity(k, raw, m.Subject)
			if err != nil {
				return nil, malformed(path, err)
			}
			// Playlist results may contain nulls.
			if e != nil {
				res.Items = append(res.Items, e)
			}
		}
	}
	return res, nil
}

func searchAs[T Entity](ctx context.Context, c *Client, kind Kind, query string, opts *SearchOptions) (*SearchResults[T], error) {
	res, err := c.Search(ctx, query, []Kind{kind}, opts)
	if err != nil {
		return nil, err
	}
	out := &SearchResults[T]{Items: make([]T, 0, len(res.Items)), Total: res.Total}
	for _, e := range res.Items {
		t, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("%w: got %T for %s", ErrMalformedResponse, e, kind)
		}
		out.Items = append(out.Items, t)
	}
	return out, nil
}

// SearchAlbums searches albums.
func (c *Client) SearchAlbums(ctx context.Context, query string, opts *SearchOptions) (*SearchResults[*Album], error) {
	return searchAs[*Album](ctx, c, KindAlbum, query, opts)
}

// SearchArtists searches artists.
func (c *Client) SearchArtists(ctx context.Context, query string, opts *SearchOptions) (*SearchResults[*Artist], error) {
	return searchAs[*Artist](ctx, c, KindArtist, query, opts)
}

// SearchTracks searches tracks.
func (c *Client) SearchTracks(ctx context.Context, query string, opts *SearchOptions) (*SearchResults[*Track], error) {
	return searchAs[*Track](ctx, c, KindTrack, query, opts)
}

// SearchPlaylists searches playlists.
func (c *Client) SearchPlaylists(ctx context.Context, query string, opts *SearchOptions) (*SearchResults[*Playlist], error) {
	return searchAs[*Playlist](ctx, c, KindPlaylist, query, opts)
}

// SearchShows searches podcast shows.
func (c *Client) SearchShows(ctx context.Context, query string, opts *SearchOptions) (*SearchResults[*Show], error) {
	return searchAs[*Show](ctx, c, KindShow, query, opts)
}

// SearchEpisodes searches podcast episodes.
func (c *Client) SearchEpisodes(ctx context.Context, query string, opts *SearchOptions) (*SearchResults[*Episode], error) {
	return searchAs[*Episode](ctx, c, KindEpisode, query, opts)
}
