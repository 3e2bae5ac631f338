package spotify

import (
	"context"
	"sync"
	"time"
)

// Credentials is the OAuth credential set of one user (the subject).
type Credentials struct {
	Subject      string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time

	// OnRefresh, if set, is called with the new access token and its lifetime
	// after a successful refresh. The Client that registered the credentials
	// keeps it for the life of the process, so it also fires with stores
	// that cannot persist functions.
	OnRefresh func(accessToken string, expiresIn time.Duration)
}

// CredentialStore maps subjects to their credentials. Implementations must be
// safe for concurrent use and keep at most one record per subject.
type CredentialStore interface {
	// Load returns ErrCredentialsNotFound when no record exists.
	Load(ctx context.Context, subject string) (Credentials, error)
	// Save replaces the record for creds.Subject.
	Save(ctx context.Context, creds Credentials) error
	Delete(ctx context.Context, subject string) error
}

// MemoryStore is an in-process CredentialStore.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credentials
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credentials)}
}

// Load returns the record of subject.
func (m *MemoryStore) Load(_ context.Context, subject string) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creds[subject]
	if !ok {
		return Credentials{}, ErrCredentialsNotFound
	}
	return c, nil
}

// Save replaces the record of creds.Subject.
func (m *MemoryStore) Save(_ context.Context, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[creds.Subject] = creds
	return nil
}

// Delete removes the record of subject, if any.
func (m *MemoryStore) Delete(_ context.Context, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, subject)
	return nil
}

// Subjects returns the subjects with stored credentials.
func (m *MemoryStore) Subjects() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.creds))
	for s := range m.creds {
		out = append(out, s)
	}
	return out
}
