package cmd

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotigo/internal/search"
	"github.com/toozej/spotigo/pkg/spotify"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the Spotify catalogue",
		Long: `Search albums, artists, tracks, playlists, shows and episodes with a single request. The
query supports the Web API's field filters such as artist:"Miles Davis".
With --best only the result whose name is closest to the query is printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringP("type", "t", "track", "Comma separated kinds to search: album, artist, track, playlist, show, episode")
	cmd.Flags().IntP("limit", "l", 10, "Maximum results per kind")
	cmd.Flags().IntP("offset", "o", 0, "Index of the first result")
	cmd.Flags().StringP("market", "m", "", "Only return content playable in this market")
	cmd.Flags().Bool("from-user", false, "Use the market of the logged in user")
	cmd.Flags().Bool("best", false, "Print only the best fuzzy match")
	cmd.MarkFlagsMutuallyExclusive("market", "from-user")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	kindList, _ := cmd.Flags().GetString("type")
	kinds, err := spotify.ParseKinds(kindList)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	market, _ := cmd.Flags().GetString("market")
	fromUser, _ := cmd.Flags().GetBool("from-user")
	best, _ := cmd.Flags().GetBool("best")

	ctx := cmd.Context()
	svc, done, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	opts := &spotify.SearchOptions{Limit: limit, Offset: offset}
	switch {
	case fromUser:
		if err := ensureLogin(ctx, svc, cmd.OutOrStdout()); err != nil {
			return err
		}
		opts.Market = spotify.FromUser(svc.Client().User().ID())
	case market != "":
		opts.Market = spotify.MarketCode(strings.ToUpper(market))
	}

	log.WithFields(log.Fields{
		"query": query,
		"kinds": kinds,
		"limit": limit,
	}).Info("Searching Spotify catalogue")

	res, err := svc.Client().API().Search(ctx, query, kinds, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(res.Items) == 0 {
		fmt.Fprintf(out, "No results for '%s'\n", query)
		return nil
	}

	if best {
		e, confidence := bestMatch(query, res.Items)
		fmt.Fprintf(out, "%s\n   %s\n   Confidence: %.0f%%\n", describe(e), e.URI(), confidence*100)
		return nil
	}

	fmt.Fprintf(out, "\n🔍 Search Results for '%s' (%d of %d):\n\n", query, len(res.Items), res.Total)
	printEntities(out, offset, res.Items)
	return nil
}

// bestMatch returns the entity whose name is closest to query. Ties keep
// the API's relevance order.
func bestMatch(query string, entities []spotify.Entity) (spotify.Entity, float64) {
	var best spotify.Entity
	bestScore := -1.0
	for _, e := range entities {
		if score := search.Confidence(query, entityName(e)); score > bestScore {
			best, bestScore = e, score
		}
	}
	return best, bestScore
}
