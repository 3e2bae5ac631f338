package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/toozej/spotigo/internal/store"
	"github.com/toozej/spotigo/pkg/config"
	"github.com/toozej/spotigo/pkg/spotify"
	"github.com/toozej/spotigo/pkg/useragent"
	"github.com/toozej/spotigo/pkg/version"
)

// Client is a CLI session: the library client, the persistent credential
// store behind it and the user currently logged in.
type Client struct {
	api     *spotify.Client
	store   store.Store
	config  config.SpotifyConfig
	logger  *logrus.Logger
	mu      sync.RWMutex
	user    *spotify.User
	state   string
	authURL string
}

// NewClient creates a session and restores the stored login selected by
// cfg.User, or the most recent one. An unusable stored login leaves the
// session unauthenticated rather than failing.
func NewClient(ctx context.Context, cfg config.SpotifyConfig, st store.Store, logger *logrus.Logger) (*Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	if cfg.RedirectURL == "" {
		logger.Error("RedirectURL is empty! Check SPOTIFY_REDIRECT_URI environment variable")
		return nil, fmt.Errorf("redirect URL is required but not configured")
	}

	state, err := newState()
	if err != nil {
		return nil, err
	}

	api := spotify.NewClient(spotify.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		RedirectURL:    cfg.RedirectURL,
		BaseURL:        cfg.BaseURL,
		TokenURL:       cfg.TokenURL,
		AuthorizeURL:   cfg.AuthorizeURL,
		AcceptLanguage: cfg.AcceptLanguage,
		UserAgent:      useragent.String(version.Version),
		RateLimit:      cfg.RateLimit,
		Timeout:        cfg.Timeout,
		Store:          st,
		Logger:         logger,
	})

	c := &Client{
		api:     api,
		store:   st,
		config:  cfg,
		logger:  logger,
		state:   state,
		authURL: api.AuthCodeURL(state),
	}

	logger.WithFields(logrus.Fields{
		"client_id":    cfg.ClientID,
		"redirect_url": cfg.RedirectURL,
	}).Debug("Generated Spotify auth URL")

	subject, err := c.storedSubject(ctx)
	if err != nil {
		logger.WithError(err).Debug("No stored Spotify login found")
		return c, nil
	}

	user, err := api.CurrentUser(ctx, subject)
	if err != nil {
		if errors.Is(err, spotify.ErrRefreshTokenRevoked) {
			logger.WithField("subject", subject).Warn("Stored Spotify login was revoked, please log in again")
		} else {
			logger.WithError(err).WithField("subject", subject).Info("Stored Spotify login is not usable, authentication required")
		}
		return c, nil
	}

	c.user = user
	logger.WithFields(logrus.Fields{
		"user_id":           user.ID(),
		"user_display_name": user.DisplayName,
	}).Debug("Restored Spotify login")
	return c, nil
}

// storedSubject picks the configured user or the most recently stored one.
func (c *Client) storedSubject(ctx context.Context) (string, error) {
	if c.config.User != "" {
		if _, err := c.store.Load(ctx, c.config.User); err != nil {
			return "", err
		}
		return c.config.User, nil
	}
	subjects, err := c.store.Subjects(ctx)
	if err != nil {
		return "", err
	}
	if len(subjects) == 0 {
		return "", spotify.ErrCredentialsNotFound
	}
	return subjects[0], nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// API returns the underlying library client.
func (c *Client) API() *spotify.Client {
	return c.api
}

// User returns the logged in user, or nil.
func (c *Client) User() *spotify.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// GetAuthURL returns the URL for user authentication
func (c *Client) GetAuthURL() string {
	return c.authURL
}

// IsAuthenticated returns whether the user is authenticated
func (c *Client) IsAuthenticated() bool {
	return c.User() != nil
}

// CompleteAuth exchanges the authorization code from the OAuth callback and
// stores the resulting login.
func (c *Client) CompleteAuth(ctx context.Context, code, state string) error {
	if state != c.state {
		return fmt.Errorf("invalid state parameter")
	}

	c.logger.Debug("Completing Spotify authentication")

	user, err := c.api.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"user_id":           user.ID(),
		"user_display_name": user.DisplayName,
	}).Info("Spotify user authentication completed successfully")
	return nil
}

// Logout forgets the stored login of the current user.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	if err := c.store.Delete(ctx, c.user.ID()); err != nil {
		return fmt.Errorf("failed to delete stored login: %w", err)
	}
	c.logger.WithField("user_id", c.user.ID()).Info("Logged out of Spotify")
	c.user = nil
	return nil
}

// Market returns the market for catalogue lookups: the configured country,
// or the logged in user's country when none is configured.
func (c *Client) Market() spotify.Market {
	if c.config.Market != "" {
		return spotify.MarketCode(c.config.Market)
	}
	if u := c.User(); u != nil {
		return spotify.FromUser(u.ID())
	}
	return spotify.Market{}
}
