package cmd

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/toozej/spotigo/internal/spotify"
	"github.com/toozej/spotigo/internal/store"
)

// newSession opens the configured credential store and restores the stored
// login. The returned func closes the store.
func newSession(ctx context.Context) (*spotify.Service, func(), error) {
	if err := conf.Spotify.RequireCredentials(); err != nil {
		return nil, nil, fmt.Errorf("spotify credentials are not configured: %w", err)
	}

	path, err := conf.Store.ResolvePath()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(conf.Store.Driver, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	log.WithFields(log.Fields{
		"driver": conf.Store.Driver,
		"path":   path,
	}).Debug("Opened credential store")

	closeStore := func() {
		if err := st.Close(); err != nil {
			log.WithError(err).Warn("Failed to close credential store")
		}
	}

	svc := spotify.NewService(ctx, conf.Spotify, st, log.StandardLogger())
	if svc.Client() == nil {
		closeStore()
		return nil, nil, fmt.Errorf("spotify client not available")
	}
	return svc, closeStore, nil
}

// ensureLogin starts the interactive login when the session has no user.
func ensureLogin(ctx context.Context, svc *spotify.Service, out io.Writer) error {
	if svc.IsAuthenticated() {
		return nil
	}
	log.Info("Spotify authentication required. Starting authentication flow...")
	if err := authenticateSpotify(ctx, svc, conf.Server.Address(), out); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}
	return nil
}
