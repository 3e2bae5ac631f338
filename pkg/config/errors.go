// Package config provides error definitions for configuration-related errors.
package config

import "errors"

// Configuration validation errors
var (
	// ErrMissingSpotifyClientID is returned when Spotify Client ID is not provided
	ErrMissingSpotifyClientID = errors.New("spotify client ID is required")

	// ErrMissingSpotifyClientSecret is returned when Spotify Client Secret is not provided
	ErrMissingSpotifyClientSecret = errors.New("spotify client secret is required")

	// ErrInvalidServerPort is returned when the callback server port is out of range
	ErrInvalidServerPort = errors.New("server port must be between 1 and 65535")

	// ErrInvalidTimeout is returned when the request timeout is not positive
	ErrInvalidTimeout = errors.New("spotify timeout must be greater than 0")

	// ErrInvalidRateLimit is returned for a negative rate limit
	ErrInvalidRateLimit = errors.New("spotify rate limit must not be negative")

	// ErrInvalidMarket is returned when the market is not a two letter country code
	ErrInvalidMarket = errors.New("spotify market must be a two letter country code")

	// ErrUnknownStoreDriver is returned for a store driver other than sqlite, file or memory
	ErrUnknownStoreDriver = errors.New("unknown credential store driver")

	// ErrPathTraversal is returned when the .env path escapes the working directory
	ErrPathTraversal = errors.New(".env file path traversal detected")
)
