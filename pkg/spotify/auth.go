package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Authenticate exchanges application credentials for a client access token
// used by anonymous requests. The credentials are kept so the token can be
// renewed when the Web API rejects it.
func (c *Client) Authenticate(ctx context.Context, clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return ErrAuthenticationRequired
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tok, err := conf.Token(c.oauthContext(ctx))
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"component": "auth",
			"operation": "client_credentials",
			"error":     err,
		}).Error("Client credential exchange failed")
		return fmt.Errorf("client credential exchange: %w", err)
	}

	c.mu.Lock()
	c.clientID, c.clientSecret, c.clientToken = clientID, clientSecret, tok.AccessToken
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"component": "auth",
		"operation": "client_credentials",
		"expiry":    tok.Expiry,
	}).Debug("Obtained client access token")
	return nil
}

// AuthCodeURL returns the consent page URL a user visits to authorize the
// application. state is echoed back to the redirect URL.
func (c *Client) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return c.oauthConfig().AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for user credentials, fetches the
// authorizing user's profile and registers the credentials under the user's
// id.
func (c *Client) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*User, error) {
	conf := c.oauthConfig()
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return nil, ErrAuthenticationRequired
	}

	tok, err := conf.Exchange(c.oauthContext(ctx), code, opts...)
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange: %w", err)
	}

	data, err := c.send(ctx, GET, "me", nil, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	user := &User{}
	ok, err := decode("me", data, user)
	if err != nil {
		return nil, err
	}
	if !ok || user.ID() == "" {
		return nil, malformed("me", errors.New("empty user profile"))
	}

	creds := Credentials{
		Subject:      user.ID(),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if err := c.RegisterUserCredentials(ctx, creds); err != nil {
		return nil, err
	}
	user.bind(c, user.ID())
	user.completed = true

	c.logger.WithFields(logrus.Fields{
		"component": "auth",
		"operation": "exchange",
		"subject":   user.ID(),
	}).Info("User authorized")
	return user, nil
}

// RegisterUserCredentials stores creds under creds.Subject, replacing any
// previous record.
func (c *Client) RegisterUserCredentials(ctx context.Context, creds Credentials) error {
	if creds.Subject == "" {
		return errors.New("spotify: credentials without subject")
	}
	if err := c.store.Save(ctx, creds); err != nil {
		return fmt.Errorf("save credentials for %q: %w", creds.Subject, err)
	}
	if creds.OnRefresh != nil {
		c.onRefresh.Store(creds.Subject, creds.OnRefresh)
	} else {
		c.onRefresh.Delete(creds.Subject)
	}
	return nil
}

// Credentials returns the stored credentials of subject.
func (c *Client) Credentials(ctx context.Context, subject string) (Credentials, error) {
	return c.store.Load(ctx, subject)
}

// CurrentUser fetches the private profile of subject with its registered
// credentials, refreshing them when expired.
func (c *Client) CurrentUser(ctx context.Context, subject string) (*User, error) {
	data, err := c.DispatchAuthenticated(ctx, subject, GET, "me", nil)
	if err != nil {
		return nil, err
	}
	if c.RawResponse() {
		return nil, &RawResponse{Path: "me", Body: data}
	}
	user := &User{}
	ok, err := decode("me", data, user)
	if err != nil {
		return nil, err
	}
	if !ok || user.ID() == "" {
		return nil, malformed("me", errors.New("empty user profile"))
	}
	user.bind(c, user.ID())
	user.completed = true
	return user, nil
}

// refresh exchanges the refresh token of subject for a new access token and
// returns it. Concurrent refreshes of one subject share a single exchange.
// stale is the token that was rejected; if the store already holds a
// different one, it is returned without contacting the token endpoint.
//
// The exchange runs detached from ctx, bounded by the client timeout, so a
// caller giving up does not fail the others waiting on it.
func (c *Client) refresh(ctx context.Context, subject, stale string) (string, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan(subject, func() (any, error) {
		ctx, cancel := context.WithTimeout(shared, c.refreshTimeout)
		defer cancel()

		creds, err := c.store.Load(ctx, subject)
		if err != nil {
			return "", err
		}
		if creds.AccessToken != "" && creds.AccessToken != stale {
			return creds.AccessToken, nil
		}
		if creds.RefreshToken == "" {
			return "", fmt.Errorf("%w: no refresh token for %q", ErrAuthenticationRequired, subject)
		}

		src := c.oauthConfig().TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: creds.RefreshToken})
		tok, err := src.Token()
		if err != nil {
			if revoked(err) {
				c.logger.WithFields(logrus.Fields{
					"component": "auth",
					"operation": "refresh",
					"subject":   subject,
				}).Warn("Refresh token revoked, user must authorize again")
				return "", &RevokedError{Subject: subject, Err: err}
			}
			return "", fmt.Errorf("refresh access token for %q: %w", subject, err)
		}

		creds.AccessToken = tok.AccessToken
		if tok.TokenType != "" {
			creds.TokenType = tok.TokenType
		}
		creds.Expiry = tok.Expiry
		if tok.RefreshToken != "" {
			creds.RefreshToken = tok.RefreshToken
		}
		if err := c.store.Save(ctx, creds); err != nil {
			return "", fmt.Errorf("save refreshed credentials for %q: %w", subject, err)
		}

		c.logger.WithFields(logrus.Fields{
			"component": "auth",
			"operation": "refresh",
			"subject":   subject,
			"expiry":    tok.Expiry,
		}).Info("Refreshed access token")

		if cb := c.refreshCallback(subject, creds); cb != nil {
			var lifetime time.Duration
			if !tok.Expiry.IsZero() {
				lifetime = time.Until(tok.Expiry).Round(time.Second)
			}
			cb(tok.AccessToken, lifetime)
		}
		return tok.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refreshCallback prefers the callback the store returned and falls back to
// the one registered in this process.
func (c *Client) refreshCallback(subject string, creds Credentials) func(string, time.Duration) {
	if creds.OnRefresh != nil {
		return creds.OnRefresh
	}
	if v, ok := c.onRefresh.Load(subject); ok {
		return v.(func(string, time.Duration))
	}
	return nil
}

func revoked(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	text := strings.ToLower(re.ErrorDescription + " " + string(re.Body))
	return strings.Contains(text, "refresh token revoked")
}

func (c *Client) oauthConfig() *oauth2.Config {
	id, secret, _ := c.appCredentials()
	return &oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		RedirectURL:  c.redirectURL,
		Scopes:       c.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.authorizeURL,
			TokenURL:  c.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// oauthContext makes the oauth2 package use the client's HTTP client.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}
