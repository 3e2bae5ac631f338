package spotify

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Web API root that relative paths are joined to.
	DefaultBaseURL = "https://api.spotify.com/v1/"

	defaultTimeout = 30 * time.Second
)

// Config configures a Client. Zero values select the public Spotify endpoints.
type Config struct {
	// ClientID and ClientSecret identify the application. They are used for
	// the client-credential and authorization-code grants.
	ClientID     string
	ClientSecret string

	BaseURL      string
	TokenURL     string
	AuthorizeURL string
	RedirectURL  string
	Scopes       []string

	// AcceptLanguage is sent with every request when set.
	AcceptLanguage string
	UserAgent      string

	// RateLimit bounds outgoing requests per second. Zero disables limiting.
	RateLimit float64

	// Timeout applies to each request when HTTPClient is nil.
	Timeout time.Duration
	// RawResponse starts the client in raw-response mode.
	RawResponse bool

	HTTPClient *http.Client
	Store      CredentialStore
	Logger     logrus.FieldLogger
}

// Client talks to the Web API. It holds the application credentials, the
// client access token and the user credential store. A Client is safe for
// concurrent use; the entities it returns are not.
type Client struct {
	baseURL        string
	tokenURL       string
	authorizeURL   string
	redirectURL    string
	scopes         []string
	acceptLanguage string
	userAgent      string

	http      *http.Client
	limiter   *rate.Limiter
	store     CredentialStore
	logger    logrus.FieldLogger
	refreshes singleflight.Group
	raw       atomic.Bool

	// refreshTimeout bounds a shared token refresh, which outlives the
	// context of the caller that started it.
	refreshTimeout time.Duration
	// onRefresh holds Credentials.OnRefresh per subject, since persistent
	// stores cannot keep functions.
	onRefresh sync.Map

	mu           sync.RWMutex
	clientID     string
	clientSecret string
	clientToken  string
}

// NewClient returns a Client configured from cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:        cfg.BaseURL,
		tokenURL:       cfg.TokenURL,
		authorizeURL:   cfg.AuthorizeURL,
		redirectURL:    cfg.RedirectURL,
		scopes:         cfg.Scopes,
		acceptLanguage: cfg.AcceptLanguage,
		userAgent:      cfg.UserAgent,
		http:           cfg.HTTPClient,
		store:          cfg.Store,
		logger:         cfg.Logger,
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	if c.tokenURL == "" {
		c.tokenURL = spotifyauth.TokenURL
	}
	if c.authorizeURL == "" {
		c.authorizeURL = spotifyauth.AuthURL
	}
	if len(c.scopes) == 0 {
		c.scopes = DefaultScopes()
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	c.refreshTimeout = c.http.Timeout
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = defaultTimeout
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	c.raw.Store(cfg.RawResponse)
	return c
}

// DefaultScopes are requested by AuthCodeURL when Config.Scopes is empty.
func DefaultScopes() []string {
	return []string{
		spotifyauth.ScopeUserReadPrivate,
		spotifyauth.ScopeUserReadEmail,
		spotifyauth.ScopeUserLibraryRead,
		spotifyauth.ScopeUserLibraryModify,
		spotifyauth.ScopeUserFollowRead,
		spotifyauth.ScopeUserFollowModify,
		spotifyauth.ScopeUserTopRead,
		spotifyauth.ScopeUserReadRecentlyPlayed,
		spotifyauth.ScopeUserReadPlaybackState,
		spotifyauth.ScopeUserModifyPlaybackState,
		spotifyauth.ScopePlaylistReadPrivate,
		spotifyauth.ScopePlaylistModifyPrivate,
		spotifyauth.ScopePlaylistModifyPublic,
	}
}

// SetRawResponse toggles raw-response mode. While enabled, operations that
// build entities return a *RawResponse error carrying the unparsed body, and
// lazy completion is skipped.
func (c *Client) SetRawResponse(on bool) {
	c.raw.Store(on)
}

// RawResponse reports whether raw-response mode is enabled.
func (c *Client) RawResponse() bool {
	return c.raw.Load()
}

// Store returns the credential store.
func (c *Client) Store() CredentialStore {
	return c.store
}

// Logger returns the client's logger.
func (c *Client) Logger() logrus.FieldLogger {
	return c.logger
}

func (c *Client) appCredentials() (id, secret, token string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clientID, c.clientSecret, c.clientToken
}
