// Package cmd provides the command-line interface of spotigo.
//
// The commands are thin wrappers around the Spotify Web API client in
// pkg/spotify and the workflows in internal/: logging in with the
// authorization code flow, catalogue lookups and searches, playlist
// management, fuzzy track matching and playback control.
//
// Example usage:
//
//	import cmd "github.com/toozej/spotigo/cmd/spotigo"
//
//	func main() {
//		cmd.Execute()
//	}
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotigo/pkg/config"
	"github.com/toozej/spotigo/pkg/man"
	"github.com/toozej/spotigo/pkg/version"
)

var (
	// conf is loaded from the environment before every command runs.
	conf config.Config
	// debug enables debug-level logging.
	debug bool
)

// rootCmd defines the base command for the spotigo CLI application.
var rootCmd = &cobra.Command{
	Use:   "spotigo",
	Short: "Browse and manage Spotify from the command line",
	Long: `spotigo is a command-line client for the Spotify Web API. It looks up and
searches the catalogue, manages your playlists, matches loosely spelled track
names to catalogue tracks and controls playback. Logins are stored locally and
refreshed automatically.`,
	Args:             cobra.ExactArgs(0),
	PersistentPreRun: rootCmdPreRun,
	Run:              rootCmdRun,
}

// rootCmdRun prints usage hints when no subcommand is given.
func rootCmdRun(cmd *cobra.Command, args []string) {
	log.Info("Use 'spotigo login' to log in to Spotify")
	log.Info("Use 'spotigo search <query>' to search the catalogue")
	log.Info("Use 'spotigo --help' to list all commands")
}

// rootCmdPreRun loads the configuration and sets the log level before any
// command runs.
func rootCmdPreRun(cmd *cobra.Command, args []string) {
	conf = config.GetEnvVars()
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute runs the root command and exits with status 1 on failure. An
// interrupt cancels the running command.
func Execute() {
	if err := execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug-level logging")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newFindCmd(),
		newSearchCmd(),
		newPlaylistCmd(),
		newMatchCmd(),
		newPlayerCmd(),
		man.NewManCmd(),
		version.Command(),
	)
}
