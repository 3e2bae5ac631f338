package spotify

import "time"

// Image is an artwork or profile picture in one size.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Followers is a follower count.
type Followers struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

// Copyright is a copyright statement of an album.
type Copyright struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// TrackLink identifies the originally requested track when track relinking
// substituted another one.
type TrackLink struct {
	ExternalURLs map[string]string `json:"external_urls"`
	Href         string            `json:"href"`
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	URI          string            `json:"uri"`
}

// Device is a playback device of a user.
type Device struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	IsActive         bool   `json:"is_active"`
	IsPrivateSession bool   `json:"is_private_session"`
	IsRestricted     bool   `json:"is_restricted"`
	VolumePercent    int    `json:"volume_percent"`
}

// parseTime reads RFC 3339 timestamps. Unparseable input yields the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ResumePoint is how far a user got through an episode.
type ResumePoint struct {
	FullyPlayed      bool `json:"fully_played"`
	ResumePositionMS int  `json:"resume_position_ms"`
}
