package spotify

import (
	"context"
	"encoding/json"
	"net/url"
)

// Show is a podcast. Shows listed from search or nested in an episode are
// simplified and carry no episodes.
type Show struct {
	Base

	Name             string
	Description      string
	Publisher        string
	MediaType        string
	Languages        []string
	Explicit         bool
	Images           []Image
	AvailableMarkets []string
	TotalEpisodes    int

	episodes json.RawMessage
}

func (s *Show) UnmarshalJSON(data []byte) error {
	var w struct {
		baseJSON
		Name             string          `json:"name"`
		Description      string          `json:"description"`
		Publisher        string          `json:"publisher"`
		MediaType        string          `json:"media_type"`
		Languages        []string        `json:"languages"`
		Explicit         bool            `json:"explicit"`
		Images           []Image         `json:"images"`
		AvailableMarkets []string        `json:"available_markets"`
		TotalEpisodes    int             `json:"total_episodes"`
		Episodes         json.RawMessage `json:"episodes"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Base.assign(w.baseJSON, KindShow)
	s.Name = w.Name
	s.Description = w.Description
	s.Publisher = w.Publisher
	s.MediaType = w.MediaType
	s.Languages = w.Languages
	s.Explicit = w.Explicit
	s.Images = w.Images
	s.AvailableMarkets = w.AvailableMarkets
	s.TotalEpisodes = w.TotalEpisodes
	s.episodes = w.Episodes
	return nil
}

// Episodes returns a page of the show's episodes. With nil opts the first
// page embedded in a full show is reused when present.
func (s *Show) Episodes(ctx context.Context, opts *PageOptions) (*Page[*Episode], error) {
	c := s.client
	if c == nil {
		return nil, ErrAuthenticationRequired
	}
	fetch := c.resolvedFetch(s.subject)
	if m := opts.market(); m.Subject != "" {
		fetch = c.marketFetch(m)
	}
	pg := &pager[*Episode]{
		client:  c,
		fetch:   fetch,
		extract: entityItem(c, s.subject, func() *Episode { return &Episode{} }),
	}
	if opts == nil && !isNull(s.episodes) && !c.RawResponse() {
		return pg.parse(s.resourcePath()+"/episodes", s.episodes)
	}
	return pg.load(ctx, withQuery("shows/"+url.PathEscape(s.id)+"/episodes", opts.values()))
}

// FindShow fetches one show.
func (c *Client) FindShow(ctx context.Context, id string, opts *FindOptions) (*Show, error) {
	return findAs[*Show](ctx, c, KindShow, id, opts)
}

// FindShows fetches several shows, preserving order.
func (c *Client) FindShows(ctx context.Context, ids []string, opts *FindOptions) ([]*Show, error) {
	return findManyAs[*Show](ctx, c, KindShow, ids, opts)
}
