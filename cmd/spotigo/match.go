package cmd

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotigo/internal/duplicate"
	"github.com/toozej/spotigo/internal/playlist"
	"github.com/toozej/spotigo/internal/search"
	"github.com/toozej/spotigo/internal/types"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <artist> <song> [album]",
		Short: "Find the catalogue track closest to an artist and song name",
		Long: `Match a loosely spelled artist, song and optional album name to a catalogue
track and report how confident the match is. With --add the match is added to
a playlist unless it is already there or the match is low confidence.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runMatch,
	}

	cmd.Flags().IntP("candidates", "n", search.DefaultCandidates, "Number of search results to score")
	cmd.Flags().String("add", "", "Add the match to this playlist (id or name)")
	cmd.Flags().BoolP("verbose", "v", false, "Show every scored candidate")

	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	q := search.Query{Artist: args[0], Track: args[1]}
	if len(args) > 2 {
		q.Album = args[2]
	}
	candidates, _ := cmd.Flags().GetInt("candidates")
	addTo, _ := cmd.Flags().GetString("add")
	verbose, _ := cmd.Flags().GetBool("verbose")

	ctx := cmd.Context()
	svc, done, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	logger := log.StandardLogger()
	matcher := search.NewMatcher(svc, logger).WithCandidates(candidates)
	out := cmd.OutOrStdout()

	if verbose {
		ranked, err := matcher.Rank(ctx, q)
		if err != nil {
			return err
		}
		for i, m := range ranked {
			fmt.Fprintf(out, "%d. ", i+1)
			printMatch(out, m)
		}
		return nil
	}

	match, err := matcher.Best(ctx, q)
	if err != nil {
		return err
	}
	printMatch(out, *match)

	if addTo == "" {
		return nil
	}
	if match.IsLowConfidence() {
		fmt.Fprintln(out, "⚠️  Low confidence match, not adding it")
		return nil
	}

	if err := ensureLogin(ctx, svc, out); err != nil {
		return err
	}
	dup := duplicate.NewDuplicateService(svc, logger)
	target, err := playlist.NewPlaylistService(svc, dup, logger).ResolvePlaylist(ctx, addTo)
	if err != nil {
		return err
	}
	result, err := dup.CheckDuplicates(ctx, target.ID, []types.Track{match.Track})
	if err != nil {
		return err
	}
	if result.HasDuplicates {
		fmt.Fprintf(out, "⚠️  Already in %s (last added %s)\n", target.Name, result.LastAdded.Format("Jan 2, 2006 15:04"))
		return nil
	}
	if err := svc.AddTracksToPlaylist(ctx, target.ID, []string{match.Track.ID}); err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Added to %s\n", target.Name)
	return nil
}

func printMatch(out io.Writer, m search.Match) {
	fmt.Fprintf(out, "🎵 %s", m.Track)
	if m.Track.Album.Name != "" {
		fmt.Fprintf(out, " (%s)", m.Track.Album.Name)
	}
	fmt.Fprintf(out, "\n   %s\n", m.Track.URI)
	fmt.Fprintf(out, "   Confidence: %.0f%% (artist %.0f%%, song %.0f%%, album %.0f%%)\n",
		m.OverallConfidence*100, m.ArtistConfidence*100, m.TrackConfidence*100, m.AlbumConfidence*100)
}
