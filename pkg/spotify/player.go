package spotify

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// Player controls playback for one user. Playback control requires a
// premium account.
type Player struct {
	user *User
}

// PlaybackContext is the album, artist or playlist being played.
type PlaybackContext struct {
	Type string `json:"type"`
	Href string `json:"href"`
	URI  string `json:"uri"`
}

// PlaybackState is the user's current playback.
type PlaybackState struct {
	Device       Device           `json:"device"`
	RepeatState  string           `json:"repeat_state"`
	ShuffleState bool             `json:"shuffle_state"`
	Context      *PlaybackContext `json:"context"`
	Timestamp    int64            `json:"timestamp"`
	ProgressMS   int              `json:"progress_ms"`
	IsPlaying    bool             `json:"is_playing"`
	Item         *Track           `json:"item"`
}

// State returns the current playback, or nil when nothing is playing.
func (p *Player) State(ctx context.Context) (*PlaybackState, error) {
	const path = "me/player"
	data, err := p.user.dispatch(ctx, GET, path, nil)
	if err != nil {
		return nil, err
	}
	if p.user.client.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	var st PlaybackState
	ok, err := decode(path, data, &st)
	if err != nil || !ok {
		return nil, err
	}
	if st.Item != nil {
		st.Item.bind(p.user.client, p.user.id)
	}
	return &st, nil
}

// Playing reports whether the user is currently playing something.
func (p *Player) Playing(ctx context.Context) (bool, error) {
	st, err := p.State(ctx)
	if err != nil || st == nil {
		return false, err
	}
	return st.IsPlaying, nil
}

// PlayOptions selects what to play. With no context or URIs playback
// resumes.
type PlayOptions struct {
	DeviceID   string
	ContextURI string
	URIs       []string
	PositionMS int
}

// Play starts or resumes playback.
func (p *Player) Play(ctx context.Context, opts *PlayOptions) error {
	var body any
	device := ""
	if opts != nil {
		device = opts.DeviceID
		fields := map[string]any{}
		if opts.ContextURI != "" {
			fields["context_uri"] = opts.ContextURI
		}
		if len(opts.URIs) > 0 {
			fields["uris"] = opts.URIs
		}
		if opts.PositionMS > 0 {
			fields["position_ms"] = opts.PositionMS
		}
		if len(fields) > 0 {
			body = fields
		}
	}
	return p.control(ctx, PUT, "me/player/play", device, nil, body)
}

// Pause pauses playback.
func (p *Player) Pause(ctx context.Context, deviceID string) error {
	return p.control(ctx, PUT, "me/player/pause", deviceID, nil, nil)
}

// Next skips to the next track.
func (p *Player) Next(ctx context.Context, deviceID string) error {
	return p.control(ctx, POST, "me/player/next", deviceID, nil, nil)
}

// Previous skips to the previous track.
func (p *Player) Previous(ctx context.Context, deviceID string) error {
	return p.control(ctx, POST, "me/player/previous", deviceID, nil, nil)
}

// SetVolume sets the volume between 0 and 100.
func (p *Player) SetVolume(ctx context.Context, percent int, deviceID string) error {
	q := url.Values{}
	q.Set("volume_percent", strconv.Itoa(min(max(percent, 0), 100)))
	return p.control(ctx, PUT, "me/player/volume", deviceID, q, nil)
}

// Shuffle toggles shuffle.
func (p *Player) Shuffle(ctx context.Context, on bool, deviceID string) error {
	q := url.Values{}
	q.Set("state", strconv.FormatBool(on))
	return p.control(ctx, PUT, "me/player/shuffle", deviceID, q, nil)
}

// Repeat sets the repeat mode: track, context or off.
func (p *Player) Repeat(ctx context.Context, state, deviceID string) error {
	q := url.Values{}
	q.Set("state", state)
	return p.control(ctx, PUT, "me/player/repeat", deviceID, q, nil)
}

// Seek moves to a position in the current track.
func (p *Player) Seek(ctx context.Context, positionMS int, deviceID string) error {
	q := url.Values{}
	q.Set("position_ms", strconv.Itoa(max(positionMS, 0)))
	return p.control(ctx, PUT, "me/player/seek", deviceID, q, nil)
}

// Queue adds a track or episode URI to the end of the playback queue.
func (p *Player) Queue(ctx context.Context, uri, deviceID string) error {
	q := url.Values{}
	q.Set("uri", uri)
	return p.control(ctx, POST, "me/player/queue", deviceID, q, nil)
}

// CurrentlyPlaying returns the track being played, or nil when nothing is
// playing or an episode is.
func (p *Player) CurrentlyPlaying(ctx context.Context) (*Track, error) {
	const path = "me/player/currently-playing"
	data, err := p.user.dispatch(ctx, GET, path, nil)
	if err != nil {
		return nil, err
	}
	if p.user.client.RawResponse() {
		return nil, &RawResponse{Path: path, Body: data}
	}
	var resp struct {
		Type string          `json:"currently_playing_type"`
		Item json.RawMessage `json:"item"`
	}
	ok, err := decode(path, data, &resp)
	if err != nil || !ok || isNull(resp.Item) {
		return nil, err
	}
	if resp.Type != "" && resp.Type != string(KindTrack) {
		return nil, nil
	}
	t := &Track{}
	if err := json.Unmarshal(resp.Item, t); err != nil {
		return nil, malformed(path, err)
	}
	t.bind(p.user.client, p.user.id)
	return t, nil
}

func (p *Player) control(ctx context.Context, verb Verb, path, deviceID string, q url.Values, body any) error {
	if q == nil {
		q = url.Values{}
	}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return p.user.write(ctx, verb, withQuery(path, q), body)
}
