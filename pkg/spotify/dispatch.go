package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DispatchAuthenticated sends a request with the access token of subject.
// When the Web API reports the token as expired, the refresh token is
// exchanged once and the request retried once. A failure of the retry, or of
// the refresh itself, is returned to the caller.
func (c *Client) DispatchAuthenticated(ctx context.Context, subject string, verb Verb, path string, body any) ([]byte, error) {
	if subject == "" {
		return nil, ErrAuthenticationRequired
	}
	creds, err := c.store.Load(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrCredentialsNotFound) {
			return nil, fmt.Errorf("%w: no credentials for %q", ErrAuthenticationRequired, subject)
		}
		return nil, err
	}

	data, err := c.send(ctx, verb, path, body, creds.AccessToken)
	if !errors.Is(err, ErrAuthorizationExpired) {
		return data, err
	}

	c.logger.WithFields(logrus.Fields{
		"component": "dispatch",
		"subject":   subject,
		"path":      path,
	}).Warn("Access token expired, refreshing")

	token, err := c.refresh(ctx, subject, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, verb, path, body, token)
}

// ResolveRequest sends a GET with the credentials of subject when the store
// holds them, and anonymously otherwise.
func (c *Client) ResolveRequest(ctx context.Context, subject, path string) ([]byte, error) {
	if subject != "" {
		if _, err := c.store.Load(ctx, subject); err == nil {
			return c.DispatchAuthenticated(ctx, subject, GET, path, nil)
		} else if !errors.Is(err, ErrCredentialsNotFound) {
			return nil, err
		}
	}
	return c.request(ctx, GET, path, nil)
}
