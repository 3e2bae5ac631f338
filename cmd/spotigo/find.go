package cmd

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotigo/pkg/spotify"
)

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <album|artist|track|playlist|user|show|episode|category> <id>...",
		Short: "Look up catalogue entities by id",
		Long: `Look up one or more entities by id. Several albums, artists, tracks, shows
or episodes are fetched with a single request; playlists, users and categories
can only be looked up one at a time. With --raw the response bodies are printed unparsed.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runFind,
	}

	cmd.Flags().StringP("market", "m", "", "Market (ISO 3166-1 alpha-2 country) for track relinking")
	cmd.Flags().Bool("raw", false, "Print the raw JSON response")

	return cmd
}

func runFind(cmd *cobra.Command, args []string) error {
	kind, err := spotify.ParseKind(args[0])
	if err != nil {
		return err
	}
	ids := args[1:]
	market, _ := cmd.Flags().GetString("market")
	raw, _ := cmd.Flags().GetBool("raw")

	ctx := cmd.Context()
	svc, done, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	api := svc.Client().API()
	api.SetRawResponse(raw)
	defer api.SetRawResponse(false)

	opts := &spotify.FindOptions{}
	if market != "" {
		opts.Market = spotify.MarketCode(strings.ToUpper(market))
	}

	log.WithFields(log.Fields{
		"kind": kind,
		"ids":  ids,
	}).Debug("Looking up entities")

	out := cmd.OutOrStdout()
	var found []spotify.Entity
	switch {
	case kind == spotify.KindPlaylist:
		owner := ""
		if u := svc.Client().User(); u != nil {
			owner = u.ID()
		}
		for _, id := range ids {
			p, err := api.FindPlaylist(ctx, owner, id)
			if printRaw(out, err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to find playlist %s: %w", id, err)
			}
			found = append(found, toEntities([]*spotify.Playlist{p})...)
		}
	case len(ids) == 1:
		e, err := api.Find(ctx, kind, ids[0], opts)
		if printRaw(out, err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find %s %s: %w", kind, ids[0], err)
		}
		found = []spotify.Entity{e}
	default:
		found, err = api.FindMany(ctx, kind, ids, opts)
		if printRaw(out, err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find %s entities: %w", kind, err)
		}
	}

	if !raw {
		printEntities(out, 0, found)
	}
	return nil
}
