package spotify

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined errors. Typed errors below match these with errors.Is.
var (
	// ErrUnsupportedBatchKind is returned when a batched lookup is requested
	// for a kind the Web API cannot fetch in bulk (users, playlists).
	// No request is sent.
	ErrUnsupportedBatchKind = errors.New("spotify: batched lookup not supported for kind")

	// ErrUnsupportedSearchKind is returned when a search includes a kind the
	// Web API cannot search for. No request is sent.
	ErrUnsupportedSearchKind = errors.New("spotify: search not supported for kind")

	// ErrAuthenticationRequired is returned when a request needs client or
	// user credentials and none are configured.
	ErrAuthenticationRequired = errors.New("spotify: authentication required")

	// ErrAuthorizationExpired is returned when the Web API rejects an access
	// token as expired.
	ErrAuthorizationExpired = errors.New("spotify: access token expired")

	// ErrRefreshTokenRevoked is returned when the token endpoint reports that
	// a user's refresh token was revoked. The user has to log in again.
	ErrRefreshTokenRevoked = errors.New("spotify: refresh token revoked")

	// ErrRemoteRequestFailed matches any non-2xx response that is not an
	// expired authorization.
	ErrRemoteRequestFailed = errors.New("spotify: request failed")

	// ErrMalformedResponse is returned when a non-empty body is not valid JSON
	// or does not have the expected shape.
	ErrMalformedResponse = errors.New("spotify: malformed response")

	// ErrRawResponse matches the *RawResponse returned by typed operations
	// while raw-response mode is enabled.
	ErrRawResponse = errors.New("spotify: raw response mode")

	// ErrCredentialsNotFound is returned by a CredentialStore when no record
	// exists for a subject.
	ErrCredentialsNotFound = errors.New("spotify: credentials not found")

	// ErrUnknownKind is returned for a kind with no entity type.
	ErrUnknownKind = errors.New("spotify: unknown kind")
)

// APIError is a non-2xx response from the Web API.
type APIError struct {
	Status  int    // HTTP status code
	Message string // error.message from the body, or the status text
	Body    []byte // raw response body
}

// Error returns the error message.
func (e *APIError) Error() string {
	return fmt.Sprintf("spotify: error %d: %s", e.Status, e.Message)
}

// Expired reports whether the response rejected an expired access token.
func (e *APIError) Expired() bool {
	return e.Status == 401 && strings.Contains(strings.ToLower(e.Message), "expired")
}

// Is lets errors.Is match ErrAuthorizationExpired or ErrRemoteRequestFailed.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthorizationExpired:
		return e.Expired()
	case ErrRemoteRequestFailed:
		return !e.Expired()
	}
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Status == t.Status
}

// UnsupportedError reports an operation the Web API cannot perform for a
// kind. It is recoverable; callers may use it to check capabilities.
type UnsupportedError struct {
	Op   string // "batch" or "search"
	Kind Kind
}

func (e *UnsupportedError) Error() string {
	if e.Op == "search" {
		return fmt.Sprintf("spotify: search not supported for %s", e.Kind)
	}
	return fmt.Sprintf("spotify: batched lookup not supported for %s", e.Kind)
}

// Is matches ErrUnsupportedSearchKind or ErrUnsupportedBatchKind.
func (e *UnsupportedError) Is(target error) bool {
	switch target {
	case ErrUnsupportedSearchKind:
		return e.Op == "search"
	case ErrUnsupportedBatchKind:
		return e.Op == "batch"
	}
	return false
}

// RevokedError reports a refresh token the token endpoint no longer accepts.
type RevokedError struct {
	Subject string
	Err     error
}

func (e *RevokedError) Error() string {
	return fmt.Sprintf("spotify: refresh token revoked for %q: %v", e.Subject, e.Err)
}

func (e *RevokedError) Unwrap() []error {
	return []error{ErrRefreshTokenRevoked, e.Err}
}

// RawResponse carries an unparsed response body. While raw-response mode is
// enabled, operations that would construct entities return it as their error
// instead.
//
//	album, err := client.FindAlbum(ctx, "5bU1", nil)
//	if raw, ok := spotify.AsRaw(err); ok {
//	    os.Stdout.Write(raw.Body)
//	}
type RawResponse struct {
	Path string
	Body []byte
}

func (r *RawResponse) Error() string {
	return fmt.Sprintf("spotify: raw response for %s (%d bytes)", r.Path, len(r.Body))
}

// Is matches ErrRawResponse.
func (r *RawResponse) Is(target error) bool {
	return target == ErrRawResponse
}

// AsRaw extracts a *RawResponse from err.
func AsRaw(err error) (*RawResponse, bool) {
	var raw *RawResponse
	if errors.As(err, &raw) {
		return raw, true
	}
	return nil, false
}

func malformed(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
}
