package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/toozej/spotigo/pkg/spotify"
)

// FileStore keeps user credentials in a JSON file readable only by its
// owner. Every save rewrites the file atomically.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// tokenData is the stored form of one subject's credentials.
type tokenData struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

// NewFileStore returns a store backed by path. The parent directory is
// created when missing.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) read() (map[string]tokenData, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]tokenData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	tokens := map[string]tokenData{}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return tokens, nil
}

func (s *FileStore) write(tokens map[string]tokenData) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write to a temporary file first, then rename for an atomic replace.
	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename credentials file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, subject string) (spotify.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return spotify.Credentials{}, err
	}
	t, ok := tokens[subject]
	if !ok {
		return spotify.Credentials{}, spotify.ErrCredentialsNotFound
	}
	return spotify.Credentials{
		Subject:      subject,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}, nil
}

func (s *FileStore) Save(_ context.Context, creds spotify.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	tokens[creds.Subject] = tokenData{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    creds.TokenType,
		Expiry:       creds.Expiry,
	}
	return s.write(tokens)
}

func (s *FileStore) Delete(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[subject]; !ok {
		return nil
	}
	delete(tokens, subject)
	return s.write(tokens)
}

// Subjects lists stored subjects in lexical order.
func (s *FileStore) Subjects(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(tokens))
	for subject := range tokens {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
