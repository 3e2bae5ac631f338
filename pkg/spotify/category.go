package spotify

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// Category is a browse category such as "Jazz" or "Focus". Categories have
// no URI and cannot be searched or fetched in bulk.
type Category struct {
	Base

	Name string

	icons Field[[]Image]
}

func (g *Category) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		Name  string         `json:"name"`
		Icons Field[[]Image] `json:"icons"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g.Base.assign(w.baseJSON, KindCategory)
	g.Name = w.Name
	g.icons = w.Icons
	return nil
}

// Icons of the category in several sizes.
func (g *Category) Icons(ctx context.Context) (Field[[]Image], error) {
	return lazy(ctx, g, &g.icons)
}

// Playlists returns a page of the playlists filed under the category.
func (g *Category) Playlists(ctx context.Context, opts *BrowseOptions) (*Page[*Playlist], error) {
	c := g.client
	if c == nil {
		return nil, ErrAuthenticationRequired
	}
	pg := &pager[*Playlist]{
		client:  c,
		fetch:   c.resolvedFetch(g.subject),
		extract: entityItem(c, "", func() *Playlist { return &Playlist{} }),
		root:    "playlists",
	}
	return pg.load(ctx, withQuery(g.resourcePath()+"/playlists", opts.values()))
}

// BrowseOptions filters browse endpoints.
type BrowseOptions struct {
	// Country is an ISO 3166-1 alpha-2 code.
	Country string
	// Locale such as "es_MX" selects the language of names.
	Locale string
	Limit  int
	Offset int
}

func (o *BrowseOptions) values() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}
	if o.Country != "" {
		q.Set("country", o.Country)
	}
	if o.Locale != "" {
		q.Set("locale", o.Locale)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// FindCategory fetches one category. Country and Locale of opts apply;
// paging fields are ignored.
func (c *Client) FindCategory(ctx context.Context, id string, opts *BrowseOptions) (*Category, error) {
	q := url.Values{}
	if opts != nil {
		q = opts.values()
		q.Del("limit")
		q.Del("offset")
	}
	path := withQuery(KindCategory.resource(url.PathEscape(id)), q)
	data, err := c.request(ctx, GET, path, nil)
	if err != nil {
		return nil, err
	}
	if c.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	g := &Category{}
	ok, err := decode(path, data, g)
	if err != nil || !ok {
		return nil, err
	}
	g.bind(c, "")
	g.completed = true
	return g, nil
}

// Categories returns a page of the browse categories.
func (c *Client) Categories(ctx context.Context, opts *BrowseOptions) (*Page[*Category], error) {
	pg := &pager[*Category]{
		client:  c,
		fetch:   c.anonymousFetch(),
		extract: entityItem(c, "", func() *Category { return &Category{} }),
		root:    "categories",
	}
	return pg.load(ctx, withQuery("browse/categories", opts.values()))
}

// FeaturedPlaylists returns a page of the playlists Spotify currently
// features.
func (c *Client) FeaturedPlaylists(ctx context.Context, opts *BrowseOptions) (*Page[*Playlist], error) {
	pg := &pager[*Playlist]{
		client:  c,
		fetch:   c.anonymousFetch(),
		extract: entityItem(c, "", func() *Playlist { return &Playlist{} }),
		root:    "playlists",
	}
	return pg.load(ctx, withQuery("browse/featured-playlists", opts.values()))
}
