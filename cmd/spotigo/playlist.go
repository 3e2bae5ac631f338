package cmd

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotigo/internal/duplicate"
	"github.com/toozej/spotigo/internal/playlist"
	ispotify "github.com/toozej/spotigo/internal/spotify"
	"github.com/toozej/spotigo/pkg/spotify"
)

func newPlaylistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage your playlists",
	}

	list := &cobra.Command{
		Use:   "list [filter]",
		Short: "List your playlists, optionally filtered by name",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlaylistList,
	}

	tracks := &cobra.Command{
		Use:   "tracks <playlist>",
		Short: "List the tracks of a playlist",
		Long: `List the tracks of a playlist given by id or name. Without --all only one
page is fetched.`,
		Args: cobra.ExactArgs(1),
		RunE: runPlaylistTracks,
	}
	tracks.Flags().Bool("all", false, "Fetch every page")
	tracks.Flags().IntP("limit", "l", 50, "Tracks per page")
	tracks.Flags().IntP("offset", "o", 0, "Index of the first track")

	addArtist := &cobra.Command{
		Use:   "add-artist <playlist> <artist>",
		Short: "Add an artist's top tracks to a playlist",
		Long: `Add the top tracks of the best matching artist to a playlist given by id or
name. Nothing is added when any of them is already in the playlist, unless
--force is given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runPlaylistAddArtist,
	}
	addArtist.Flags().BoolP("force", "f", false, "Add even when tracks are already present")

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a private playlist unless one with that name exists",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlaylistCreate,
	}
	create.Flags().String("description", "", "Playlist description")

	contains := &cobra.Command{
		Use:   "contains <playlist> <track-id>...",
		Short: "Check which tracks a playlist already contains",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runPlaylistContains,
	}

	cmd.AddCommand(list, tracks, addArtist, create, contains)
	return cmd
}

// playlistServices returns a logged in session and the playlist workflows
// on top of it.
func playlistServices(ctx context.Context, cmd *cobra.Command) (*ispotify.Service, *playlist.PlaylistService, func(), error) {
	svc, done, err := newSession(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := ensureLogin(ctx, svc, cmd.OutOrStdout()); err != nil {
		done()
		return nil, nil, nil, err
	}
	logger := log.StandardLogger()
	dup := duplicate.NewDuplicateService(svc, logger)
	return svc, playlist.NewPlaylistService(svc, dup, logger), done, nil
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, playlists, done, err := playlistServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}
	found, err := playlists.FindPlaylists(ctx, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(found) == 0 {
		fmt.Fprintln(out, "No playlists found")
		return nil
	}
	for i, p := range found {
		fmt.Fprintf(out, "%d. 📃 %s (%d tracks)\n   %s\n", i+1, p.Name, p.TrackCount, p.ID)
	}
	return nil
}

func runPlaylistTracks(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	ctx := cmd.Context()
	svc, playlists, done, err := playlistServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	ref, err := playlists.ResolvePlaylist(ctx, args[0])
	if err != nil {
		return err
	}
	p, err := svc.Client().API().FindPlaylist(ctx, svc.Client().User().ID(), ref.ID)
	if err != nil {
		return fmt.Errorf("failed to get playlist %s: %w", ref.ID, err)
	}
	if p == nil {
		return fmt.Errorf("playlist %s not found", ref.ID)
	}

	first, err := p.Tracks(ctx, &spotify.PageOptions{Limit: limit, Offset: offset})
	if err != nil {
		return fmt.Errorf("failed to get playlist tracks: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", describe(p))
	if !all {
		printEntities(out, first.Offset, toEntities(first.Items))
		if first.HasNext() {
			fmt.Fprintf(out, "\n%d of %d tracks shown, use --all or --offset %d for more\n",
				first.Len(), first.Total, first.Offset+first.Len())
		}
		return nil
	}
	for page, err := range first.Pages(ctx) {
		if err != nil {
			return fmt.Errorf("failed to get playlist tracks: %w", err)
		}
		printEntities(out, page.Offset, toEntities(page.Items))
	}
	return nil
}

func runPlaylistAddArtist(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	artistName := strings.Join(args[1:], " ")

	ctx := cmd.Context()
	_, playlists, done, err := playlistServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	target, err := playlists.ResolvePlaylist(ctx, args[0])
	if err != nil {
		return err
	}

	result, err := playlists.AddArtistToPlaylist(ctx, artistName, target.ID, force)
	out := cmd.OutOrStdout()
	if result != nil {
		switch {
		case result.Success:
			fmt.Fprintf(out, "✅ %s\n", result.Message)
			for _, t := range result.TracksAdded {
				fmt.Fprintf(out, "   🎵 %s\n", t)
			}
		case result.WasDuplicate:
			fmt.Fprintf(out, "⚠️  %s\n", result.Message)
		default:
			fmt.Fprintf(out, "❌ %s\n", result.Message)
		}
	}
	return err
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	name := strings.Join(args, " ")

	ctx := cmd.Context()
	_, playlists, done, err := playlistServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	p, created, err := playlists.GetOrCreatePlaylist(ctx, name, description)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Created playlist %s (%s)\n", p.Name, p.ID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Playlist %s already exists (%s)\n", p.Name, p.ID)
	}
	return nil
}

func runPlaylistContains(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, playlists, done, err := playlistServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer done()

	target, err := playlists.ResolvePlaylist(ctx, args[0])
	if err != nil {
		return err
	}
	ids := args[1:]
	present, err := svc.CheckTracksInPlaylist(ctx, target.ID, ids)
	if err != nil {
		return err
	}
	for i, id := range ids {
		mark := "❌"
		if present[i] {
			mark = "✅"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, id)
	}
	return nil
}
