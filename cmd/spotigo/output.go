package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/toozej/spotigo/pkg/spotify"
)

// entityName is the name shown for e and used for fuzzy ranking.
func entityName(e spotify.Entity) string {
	switch v := e.(type) {
	case *spotify.Album:
		return v.Name
	case *spotify.Artist:
		return v.Name
	case *spotify.Track:
		return v.Name
	case *spotify.Playlist:
		return v.Name
	case *spotify.User:
		if v.DisplayName != "" {
			return v.DisplayName
		}
		return v.ID()
	case *spotify.Show:
		return v.Name
	case *spotify.Episode:
		return v.Name
	case *spotify.Category:
		return v.Name
	}
	return ""
}

// describe renders e on one line without triggering completion.
func describe(e spotify.Entity) string {
	switch v := e.(type) {
	case *spotify.Album:
		names := make([]string, 0, len(v.Artists))
		for _, a := range v.Artists {
			if a != nil {
				names = append(names, a.Name)
			}
		}
		s := fmt.Sprintf("💿 %s", v.Name)
		if len(names) > 0 {
			s += " by " + strings.Join(names, ", ")
		}
		if v.ReleaseDate != "" {
			s += fmt.Sprintf(" (%s, %s)", v.AlbumType, v.ReleaseDate)
		}
		return s
	case *spotify.Artist:
		return fmt.Sprintf("🎤 %s", v.Name)
	case *spotify.Track:
		s := "🎵 " + v.Name
		if names := v.ArtistNames(); len(names) > 0 {
			s = fmt.Sprintf("🎵 %s - %s", strings.Join(names, ", "), v.Name)
		}
		if v.DurationMS > 0 {
			s += fmt.Sprintf(" [%s]", formatDuration(v.Duration()))
		}
		return s
	case *spotify.Playlist:
		s := fmt.Sprintf("📃 %s (%d tracks)", v.Name, v.TracksTotal)
		if v.Owner != nil {
			s += " by " + entityName(v.Owner)
		}
		return s
	case *spotify.User:
		return fmt.Sprintf("👤 %s", entityName(v))
	case *spotify.Show:
		s := fmt.Sprintf("🎙️ %s", v.Name)
		if v.Publisher != "" {
			s += " by " + v.Publisher
		}
		return s
	case *spotify.Episode:
		s := "📻 " + v.Name
		if v.DurationMS > 0 {
			s += fmt.Sprintf(" [%s]", formatDuration(v.Duration()))
		}
		return s
	case *spotify.Category:
		return fmt.Sprintf("🗂️ %s", v.Name)
	case nil:
		return "(not found)"
	}
	return e.URI()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// toEntities widens typed entities, mapping nil pointers to nil entities.
func toEntities[T interface {
	spotify.Entity
	comparable
}](xs []T) []spotify.Entity {
	var zero T
	out := make([]spotify.Entity, len(xs))
	for i, x := range xs {
		if x != zero {
			out[i] = x
		}
	}
	return out
}

// printEntities writes one numbered line per entity with its URI.
func printEntities(out io.Writer, offset int, entities []spotify.Entity) {
	for i, e := range entities {
		if e == nil {
			fmt.Fprintf(out, "%d. %s\n", offset+i+1, describe(nil))
			continue
		}
		ref := e.URI()
		if ref == "" {
			ref = e.Href()
		}
		fmt.Fprintf(out, "%d. %s\n   %s\n", offset+i+1, describe(e), ref)
	}
}

// printRaw writes the body of a raw response. It reports whether err was one.
func printRaw(out io.Writer, err error) bool {
	raw, ok := spotify.AsRaw(err)
	if !ok {
		return false
	}
	_, _ = out.Write(raw.Body)
	if len(raw.Body) > 0 && raw.Body[len(raw.Body)-1] != '\n' {
		fmt.Fprintln(out)
	}
	return true
}
