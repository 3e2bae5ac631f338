package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/spotigo/internal/types"
)

// loginTimeout bounds how long the callback server waits for the browser.
var loginTimeout = 5 * time.Minute

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to Spotify",
		Long: `Log in to Spotify with the authorization code flow. A temporary server
listens on SERVER_HOST:SERVER_PORT for the redirect to SPOTIFY_REDIRECT_URI.
The login is stored in the configured credential store and refreshed
automatically when it expires.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, done, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := authenticateSpotify(ctx, svc, conf.Server.Address(), cmd.OutOrStdout()); err != nil {
		return err
	}
	u := svc.Client().User()
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s (%s)\n", u.DisplayName, u.ID())
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Spotify login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, done, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer done()

			if !svc.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			id := svc.Client().User().ID()
			if err := svc.Client().Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", id)
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in Spotify user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, done, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer done()

			u := svc.Client().User()
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in, run 'spotigo login'")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "👤 %s (%s)\n", u.DisplayName, u.ID())
			if country, err := u.Country(ctx); err == nil && country.Valid {
				fmt.Fprintf(out, "   Country: %s\n", country.Value)
			}
			if product, err := u.Product(ctx); err == nil && product.Valid {
				fmt.Fprintf(out, "   Product: %s\n", product.Value)
			}
			return nil
		},
	}
}

// authenticateSpotify prints the consent URL and serves the OAuth redirect
// on addr until the callback completes, ctx ends or loginTimeout passes.
func authenticateSpotify(ctx context.Context, spotifyService types.SpotifyService, addr string, out io.Writer) error {
	authURL := spotifyService.GetAuthURL()

	log.WithField("auth_url", authURL).Info("Please visit this URL to authenticate with Spotify")
	fmt.Fprintf(out, "\n🔐 Spotify Authentication Required\n")
	fmt.Fprintf(out, "Please visit this URL to authenticate:\n%s\n\n", authURL)
	fmt.Fprintf(out, "Waiting for authentication... (Press Ctrl+C to cancel)\n")

	authComplete := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		handleSpotifyCallback(w, r, spotifyService, authComplete)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("address", addr).Info("Starting temporary server for OAuth callback")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			authComplete <- fmt.Errorf("server error: %w", err)
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Error shutting down authentication server")
		}
	}()

	timer := time.NewTimer(loginTimeout)
	defer timer.Stop()

	select {
	case err := <-authComplete:
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("authentication timeout after %s", loginTimeout)
	}
}

const successHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Authentication Successful</title>
	<style>
		body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
		.success { color: #28a745; font-size: 24px; margin-bottom: 20px; }
		.message { color: #6c757d; font-size: 16px; }
	</style>
</head>
<body>
	<div class="success">✅ Authentication Successful!</div>
	<div class="message">You can now close this window and return to the terminal.</div>
</body>
</html>
`

// handleSpotifyCallback handles the OAuth redirect from Spotify. Exactly one
// result is sent on authComplete per request.
func handleSpotifyCallback(w http.ResponseWriter, r *http.Request, spotifyService types.SpotifyService, authComplete chan<- error) {
	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")

	send := func(err error) {
		select {
		case authComplete <- err:
		default:
		}
	}

	if errorParam := q.Get("error"); errorParam != "" {
		log.WithField("error", errorParam).Error("Spotify authentication error")
		http.Error(w, "Authentication failed: "+errorParam, http.StatusBadRequest)
		send(fmt.Errorf("spotify authentication error: %s", errorParam))
		return
	}

	if code == "" {
		log.Error("No authorization code received")
		http.Error(w, "No authorization code received", http.StatusBadRequest)
		send(fmt.Errorf("no authorization code received"))
		return
	}

	if err := spotifyService.CompleteAuth(r.Context(), code, state); err != nil {
		log.WithError(err).Error("Failed to complete Spotify authentication")
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		send(fmt.Errorf("failed to complete authentication: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, successHTML); err != nil {
		log.WithError(err).Warn("Failed to write success response")
	}

	log.Info("Spotify authentication completed successfully via callback")
	send(nil)
}
