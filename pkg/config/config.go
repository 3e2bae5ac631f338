// Package config provides secure configuration management for the spotigo CLI.
//
// This package handles loading configuration from environment variables and .env files
// with built-in security measures to prevent path traversal attacks. It uses the
// github.com/caarlos0/env library for environment variable parsing and
// github.com/joho/godotenv for .env file loading.
//
// The configuration loading follows a priority order:
//  1. Environment variables (highest priority)
//  2. .env file in current working directory
//  3. Default values (if any)
//
// The library in pkg/spotify never reads this configuration itself; the CLI
// translates it into a spotify.Config.
//
// Example usage:
//
//	import "github.com/toozej/spotigo/pkg/config"
//
//	func main() {
//		conf := config.GetEnvVars()
//		fmt.Printf("Client ID: %s\n", conf.Spotify.ClientID)
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the main application configuration with nested service configurations.
type Config struct {
	Spotify SpotifyConfig `envPrefix:"SPOTIFY_"`
	Store   StoreConfig   `envPrefix:"STORE_"`
	Server  ServerConfig  `envPrefix:"SERVER_"`
}

// SpotifyConfig represents the configuration for Spotify Web API access.
type SpotifyConfig struct {
	// ClientID is the Spotify application client ID.
	ClientID string `env:"CLIENT_ID"`

	// ClientSecret is the Spotify application client secret.
	ClientSecret string `env:"CLIENT_SECRET"` // #nosec G117 -- OAuth client secret, expected in config

	// RedirectURL is the callback URL for OAuth authentication.
	RedirectURL string `env:"REDIRECT_URI" envDefault:"http://127.0.0.1:8080/callback"`

	// User selects which stored login to use. Empty means the most recent one.
	User string `env:"USER"`

	// AcceptLanguage localizes names and descriptions returned by the API.
	AcceptLanguage string `env:"ACCEPT_LANGUAGE"`

	// Market is the default ISO 3166-1 alpha-2 country for catalogue lookups.
	Market string `env:"MARKET" envDefault:"US"`

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"0"`

	// Timeout bounds every HTTP request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// Endpoint overrides, mainly for testing against a local fake.
	BaseURL      string `env:"BASE_URL"`
	TokenURL     string `env:"TOKEN_URL"`
	AuthorizeURL string `env:"AUTHORIZE_URL"`
}

// StoreConfig selects where user credentials are persisted.
type StoreConfig struct {
	// Driver is one of sqlite, file or memory.
	Driver string `env:"DRIVER" envDefault:"sqlite"`

	// Path is the database or JSON file. Defaults depend on the driver.
	Path string `env:"PATH"`
}

// ServerConfig represents the OAuth callback server configuration.
type ServerConfig struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8080"`
}

// Load reads the .env file of the current directory, if any, and the
// environment into a validated Config.
func Load() (Config, error) {
	// Get current working directory for secure file operations
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("error getting current working directory: %w", err)
	}

	// Construct secure path for .env file within current directory
	envPath := filepath.Join(cwd, ".env")

	// Ensure the path is within our expected directory (prevent traversal)
	cleanEnvPath, err := filepath.Abs(envPath)
	if err != nil {
		return Config{}, fmt.Errorf("error resolving .env file path: %w", err)
	}
	cleanCwd, err := filepath.Abs(cwd)
	if err != nil {
		return Config{}, fmt.Errorf("error resolving current directory: %w", err)
	}
	relPath, err := filepath.Rel(cleanCwd, cleanEnvPath)
	if err != nil || strings.Contains(relPath, "..") {
		return Config{}, ErrPathTraversal
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	var conf Config
	if err := env.Parse(&conf); err != nil {
		return Config{}, fmt.Errorf("error parsing configuration from environment: %w", err)
	}

	if err := validateConfig(&conf); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// GetEnvVars loads and returns the application configuration from environment
// variables and .env files with comprehensive security validation.
//
// The function will terminate the program with os.Exit(1) if loading or
// validation fails.
func GetEnvVars() Config {
	conf, err := Load()
	if err != nil {
		fmt.Printf("Configuration error: %s\n", err)
		fmt.Println("Please check your configuration and try again.")
		os.Exit(1)
	}
	return conf
}

// Address returns the server address
func (s ServerConfig) Address() string {
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ResolvePath returns the absolute store path, handling tilde expansion and
// ensuring the directory exists. The memory driver has no path.
func (s StoreConfig) ResolvePath() (string, error) {
	path := s.Path
	switch {
	case strings.EqualFold(s.Driver, "memory"):
		return "", nil
	case path == ":memory:":
		return path, nil
	case path == "" && strings.EqualFold(s.Driver, "file"):
		path = "~/.config/spotigo/credentials.json"
	case path == "":
		path = "~/.config/spotigo/credentials.db"
	}

	// Handle tilde expansion
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	return absPath, nil
}

// validateConfig validates the configuration
func validateConfig(conf *Config) error {
	var errs []error

	if conf.Server.Port < 1 || conf.Server.Port > 65535 {
		errs = append(errs, ErrInvalidServerPort)
	}

	// Spotify credentials are only needed by commands that talk to the API,
	// so missing ones are a warning here.
	if conf.Spotify.ClientID == "" {
		fmt.Println("Warning: SPOTIFY_CLIENT_ID is not set. The application will not be able to connect to Spotify.")
		fmt.Println("Please set your Spotify credentials to use the application.")
	}
	if conf.Spotify.ClientSecret == "" {
		fmt.Println("Warning: SPOTIFY_CLIENT_SECRET is not set. The application will not be able to connect to Spotify.")
	}

	if conf.Spotify.Timeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if conf.Spotify.RateLimit < 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}
	if m := conf.Spotify.Market; m != "" && len(m) != 2 {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMarket, m))
	}

	switch strings.ToLower(conf.Store.Driver) {
	case "sqlite", "file", "memory":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, conf.Store.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}

	return nil
}

// RequireCredentials reports whether client id and secret are set.
func (s SpotifyConfig) RequireCredentials() error {
	var errs []error
	if s.ClientID == "" {
		errs = append(errs, ErrMissingSpotifyClientID)
	}
	if s.ClientSecret == "" {
		errs = append(errs, ErrMissingSpotifyClientSecret)
	}
	return errors.Join(errs...)
}
