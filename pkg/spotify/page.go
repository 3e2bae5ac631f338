package spotify

import (
	"context"
	"encoding/json"
	"iter"
	"net/url"
	"strconv"
)

// Page is one window of a server-side collection. Adjacent pages are fetched
// on demand by Next and Previous and cached, so walking back and forth does
// not repeat requests. Items may contain nil entries where the Web API
// returned null, keeping positions aligned with Offset.
//
// Pages are not safe for concurrent use. If the collection changes while it
// is traversed, items may be skipped or repeated.
type Page[T any] struct {
	Items  []T
	Limit  int
	Offset int
	Total  int
	Href   string

	next     string
	previous string
	nextPage *Page[T]
	prevPage *Page[T]
	pager    *pager[T]
}

// pager carries what a page needs to load its neighbours.
type pager[T any] struct {
	client *Client
	fetch  func(ctx context.Context, path string) ([]byte, error)
	// extract builds one item from its JSON element.
	extract func(raw json.RawMessage) (T, error)
	// root, when set, is the key the page object is wrapped under.
	root string
}

type pageJSON struct {
	Href     string            `json:"href"`
	Items    []json.RawMessage `json:"items"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Total    int               `json:"total"`
	Next     string            `json:"next"`
	Previous string            `json:"previous"`
}

// load fetches path and parses it. An empty body yields nil.
func (pg *pager[T]) load(ctx context.Context, path string) (*Page[T], error) {
	data, err := pg.fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if pg.client.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	return pg.parse(path, data)
}

func (pg *pager[T]) parse(path string, data []byte) (*Page[T], error) {
	body := json.RawMessage(data)
	if pg.root != "" {
		var wrapped map[string]json.RawMessage
		ok, err := decode(path, data, &wrapped)
		if err != nil || !ok {
			return nil, err
		}
		body = wrapped[pg.root]
	}

	var pj pageJSON
	ok, err := decode(path, body, &pj)
	if err != nil || !ok {
		return nil, err
	}

	p := &Page[T]{
		Items:    make([]T, 0, len(pj.Items)),
		Limit:    pj.Limit,
		Offset:   pj.Offset,
		Total:    pj.Total,
		Href:     pj.Href,
		next:     pg.client.relative(pj.Next),
		previous: pg.client.relative(pj.Previous),
		pager:    pg,
	}
	for _, raw := range pj.Items {
		item, err := pg.extract(raw)
		if err != nil {
			return nil, malformed(path, err)
		}
		p.Items = append(p.Items, item)
	}
	return p, nil
}

// HasNext reports whether a following page exists.
func (p *Page[T]) HasNext() bool { return p.nextPage != nil || p.next != "" }

// HasPrevious reports whether a preceding page exists.
func (p *Page[T]) HasPrevious() bool { return p.prevPage != nil || p.previous != "" }

// Len returns the number of items on this page.
func (p *Page[T]) Len() int { return len(p.Items) }

// Next returns the following page, or nil at the end of the collection.
func (p *Page[T]) Next(ctx context.Context) (*Page[T], error) {
	if p.nextPage != nil {
		return p.nextPage, nil
	}
	if p.next == "" {
		return nil, nil
	}
	np, err := p.pager.load(ctx, p.next)
	if err != nil || np == nil {
		return nil, err
	}
	np.prevPage = p
	p.nextPage = np
	return np, nil
}

// Previous returns the preceding page, or nil at the start of the collection.
func (p *Page[T]) Previous(ctx context.Context) (*Page[T], error) {
	if p.prevPage != nil {
		return p.prevPage, nil
	}
	if p.previous == "" {
		return nil, nil
	}
	pp, err := p.pager.load(ctx, p.previous)
	if err != nil || pp == nil {
		return nil, err
	}
	pp.nextPage = p
	p.prevPage = pp
	return pp, nil
}

// Pages iterates over p and every following page.
func (p *Page[T]) Pages(ctx context.Context) iter.Seq2[*Page[T], error] {
	return func(yield func(*Page[T], error) bool) {
		for cur := p; cur != nil; {
			if !yield(cur, nil) {
				return
			}
			next, err := cur.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			cur = next
		}
	}
}

// All fetches every page from p to the end of the collection and returns
// their items in order. For large collections this issues many requests.
func (p *Page[T]) All(ctx context.Context) ([]T, error) {
	// Total comes from the server and is not trusted for sizing.
	items := make([]T, 0, len(p.Items))
	for page, err := range p.Pages(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// PageOptions selects a window of a collection.
type PageOptions struct {
	Limit  int
	Offset int
	Market Market
}

func (o *PageOptions) values() url.Values {
	q := url.Values{}
	if o == nil {
		return q
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if v := o.Market.value(); v != "" {
		q.Set("market", v)
	}
	return q
}

func (o *PageOptions) market() Market {
	if o == nil {
		return Market{}
	}
	return o.Market
}

// entityItem extracts items that are entity objects themselves.
func entityItem[T Entity](c *Client, subject string, mk func() T) func(json.RawMessage) (T, error) {
	return func(raw json.RawMessage) (T, error) {
		var zero T
		if isNull(raw) {
			return zero, nil
		}
		e := mk()
		if err := json.Unmarshal(raw, e); err != nil {
			return zero, err
		}
		e.bind(c, subject)
		return e, nil
	}
}

// savedTrackItem extracts {"added_at": .., "track": {..}} items.
func savedTrackItem(c *Client, subject string) func(json.RawMessage) (*Track, error) {
	return func(raw json.RawMessage) (*Track, error) {
		var w struct {
			AddedAt string          `json:"added_at"`
			Track   json.RawMessage `json:"track"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		if isNull(w.Track) {
			return nil, nil
		}
		t := &Track{}
		if err := json.Unmarshal(w.Track, t); err != nil {
			return nil, err
		}
		t.AddedAt = parseTime(w.AddedAt)
		t.bind(c, subject)
		return t, nil
	}
}

// savedAlbumItem extracts {"added_at": .., "album": {..}} items.
func savedAlbumItem(c *Client, subject string) func(json.RawMessage) (*Album, error) {
	return func(raw json.RawMessage) (*Album, error) {
		var w struct {
			AddedAt string          `json:"added_at"`
			Album   json.RawMessage `json:"album"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		if isNull(w.Album) {
			return nil, nil
		}
		a := &Album{}
		if err := json.Unmarshal(w.Album, a); err != nil {
			return nil, err
		}
		a.AddedAt = parseTime(w.AddedAt)
		a.bind(c, subject)
		return a, nil
	}
}

// playedTrackItem extracts recently played items.
func playedTrackItem(c *Client, subject string) func(json.RawMessage) (*Track, error) {
	return func(raw json.RawMessage) (*Track, error) {
		var w struct {
			PlayedAt string          `json:"played_at"`
			Track    json.RawMessage `json:"track"`
			Context  *struct {
				Type string `json:"type"`
			} `json:"context"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		if isNull(w.Track) {
			return nil, nil
		}
		t := &Track{}
		if err := json.Unmarshal(w.Track, t); err != nil {
			return nil, err
		}
		t.PlayedAt = parseTime(w.PlayedAt)
		if w.Context != nil {
			t.ContextType = w.Context.Type
		}
		t.bind(c, subject)
		return t, nil
	}
}

// anonymousFetch uses the client access token.
func (c *Client) anonymousFetch() func(context.Context, string) ([]byte, error) {
	return func(ctx context.Context, path string) ([]byte, error) {
		return c.request(ctx, GET, path, nil)
	}
}

// resolvedFetch uses subject's credentials when registered.
func (c *Client) resolvedFetch(subject string) func(context.Context, string) ([]byte, error) {
	return func(ctx context.Context, path string) ([]byte, error) {
		return c.ResolveRequest(ctx, subject, path)
	}
}

// userFetch requires subject's credentials.
func (c *Client) userFetch(subject string) func(context.Context, string) ([]byte, error) {
	return func(ctx context.Context, path string) ([]byte, error) {
		return c.DispatchAuthenticated(ctx, subject, GET, path, nil)
	}
}

// marketFetch follows the market's credential choice.
func (c *Client) marketFetch(m Market) func(context.Context, string) ([]byte, error) {
	return func(ctx context.Context, path string) ([]byte, error) {
		return c.get(ctx, path, m)
	}
}
