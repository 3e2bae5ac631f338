package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Verb is an HTTP method supported by the Web API.
type Verb string

const (
	GET    Verb = http.MethodGet
	POST   Verb = http.MethodPost
	PUT    Verb = http.MethodPut
	DELETE Verb = http.MethodDelete
)

// url joins a relative path to the base URL. Absolute URLs pass through.
func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + strings.TrimPrefix(path, "/")
}

// relative strips the base URL from a link returned by the API so that it
// can be resolved against the current configuration.
func (c *Client) relative(link string) string {
	if link == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(link, c.baseURL); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(link, DefaultBaseURL); ok {
		return rest
	}
	return link
}

// send issues one request and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, verb Verb, path string, body any, bearer string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, string(verb), c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"component": "transport",
		"method":    verb,
		"path":      path,
	}).Debug("Sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", verb, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data), Body: data}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.WithFields(logrus.Fields{
			"component": "transport",
			"method":    verb,
			"path":      path,
			"status":    resp.StatusCode,
		}).Debug("Request failed")
		return nil, apiErr
	}
	return data, nil
}

// errorMessage extracts the message from an API error body. The Web API
// uses {"error":{"status":..,"message":..}}; the accounts service uses
// {"error":"..","error_description":".."}.
func errorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &flat); err == nil {
		if flat.Description != "" {
			return flat.Description
		}
		return flat.Error
	}
	return ""
}

// request sends an anonymous request with the client access token. When the
// token is rejected and application credentials are known, it authenticates
// again and retries once.
func (c *Client) request(ctx context.Context, verb Verb, path string, body any) ([]byte, error) {
	id, secret, token := c.appCredentials()
	if token == "" {
		if id == "" || secret == "" {
			return nil, ErrAuthenticationRequired
		}
		if err := c.Authenticate(ctx, id, secret); err != nil {
			return nil, err
		}
		_, _, token = c.appCredentials()
	}

	data, err := c.send(ctx, verb, path, body, token)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return data, err
	}
	if id == "" || secret == "" {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationRequired, err)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "transport",
		"path":      path,
	}).Info("Client token rejected, authenticating again")

	if err := c.Authenticate(ctx, id, secret); err != nil {
		return nil, err
	}
	_, _, token = c.appCredentials()
	return c.send(ctx, verb, path, body, token)
}

// decode unmarshals a response body into v. It reports false for an empty
// body.
func decode(path string, data []byte, v any) (bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, malformed(path, err)
	}
	return true, nil
}
