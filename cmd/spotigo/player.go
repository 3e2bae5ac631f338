package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/toozej/spotigo/pkg/spotify"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Show and control playback",
		Long:  `Show the current playback. The subcommands control playback and need a premium account.`,
		Args:  cobra.NoArgs,
		RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
			st, err := u.Player().State(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if st == nil || st.Item == nil {
				fmt.Fprintln(out, "Nothing is playing")
				return nil
			}
			status := "⏸️  Paused"
			if st.IsPlaying {
				status = "▶️  Playing"
			}
			fmt.Fprintf(out, "%s %s\n", status, describe(st.Item))
			fmt.Fprintf(out, "   %s / %s on %s (volume %d%%)\n",
				formatDuration(msDuration(st.ProgressMS)), formatDuration(st.Item.Duration()),
				st.Device.Name, st.Device.VolumePercent)
			return nil
		}),
	}
	cmd.PersistentFlags().String("device", "", "Device id to control, defaults to the active device")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "play [uri]...",
			Short: "Resume playback, or play track URIs or one album/playlist URI",
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				opts := &spotify.PlayOptions{DeviceID: device(cmd)}
				if len(args) == 1 && !strings.HasPrefix(args[0], "spotify:track:") {
					opts.ContextURI = args[0]
				} else {
					opts.URIs = args
				}
				return u.Player().Play(ctx, opts)
			}),
		},
		&cobra.Command{
			Use:   "pause",
			Short: "Pause playback",
			Args:  cobra.NoArgs,
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				return u.Player().Pause(ctx, device(cmd))
			}),
		},
		&cobra.Command{
			Use:   "next",
			Short: "Skip to the next track",
			Args:  cobra.NoArgs,
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				return u.Player().Next(ctx, device(cmd))
			}),
		},
		&cobra.Command{
			Use:   "previous",
			Short: "Skip to the previous track",
			Args:  cobra.NoArgs,
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				return u.Player().Previous(ctx, device(cmd))
			}),
		},
		&cobra.Command{
			Use:   "volume <percent>",
			Short: "Set the volume between 0 and 100",
			Args:  cobra.ExactArgs(1),
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				percent, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid volume %q: %w", args[0], err)
				}
				return u.Player().SetVolume(ctx, percent, device(cmd))
			}),
		},
		&cobra.Command{
			Use:   "queue <uri>",
			Short: "Add a track or episode URI to the playback queue",
			Args:  cobra.ExactArgs(1),
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				return u.Player().Queue(ctx, args[0], device(cmd))
			}),
		},
		&cobra.Command{
			Use:   "seek <position>",
			Short: "Seek to a position such as 1m30s",
			Args:  cobra.ExactArgs(1),
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				pos, err := time.ParseDuration(args[0])
				if err != nil {
					return fmt.Errorf("invalid position %q: %w", args[0], err)
				}
				return u.Player().Seek(ctx, int(pos.Milliseconds()), device(cmd))
			}),
		},
		&cobra.Command{
			Use:   "devices",
			Short: "List playback devices",
			Args:  cobra.NoArgs,
			RunE: withPlayer(func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error {
				devices, err := u.Devices(ctx)
				if err != nil {
					return err
				}
				for _, d := range devices {
					active := " "
					if d.IsActive {
						active = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) %s\n", active, d.Name, d.Type, d.ID)
				}
				return nil
			}),
		},
	)
	return cmd
}

func device(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("device")
	return id
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// withPlayer runs fn with the logged in user, starting the login when needed.
func withPlayer(fn func(ctx context.Context, cmd *cobra.Command, u *spotify.User, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, done, err := newSession(ctx)
		if err != nil {
			return err
		}
		defer done()

		if err := ensureLogin(ctx, svc, cmd.OutOrStdout()); err != nil {
			return err
		}
		return fn(ctx, cmd, svc.Client().User(), args)
	}
}
