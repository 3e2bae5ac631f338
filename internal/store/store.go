// Package store provides persistent spotify.CredentialStore implementations
// so that user logins survive between CLI invocations.
package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/toozej/spotigo/pkg/spotify"
)

// Supported store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Store is a credential store that can enumerate its subjects and must be
// closed after use.
type Store interface {
	spotify.CredentialStore
	io.Closer
	Subjects(ctx context.Context) ([]string, error)
}

// memoryStore adapts spotify.MemoryStore to Store.
type memoryStore struct {
	*spotify.MemoryStore
}

func (m memoryStore) Subjects(context.Context) ([]string, error) {
	subjects := m.MemoryStore.Subjects()
	sort.Strings(subjects)
	return subjects, nil
}

func (memoryStore) Close() error { return nil }

// Open returns the store for driver rooted at path. The memory driver
// ignores path.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverSQLite, "":
		return NewSQLiteStore(path)
	case DriverFile:
		return NewFileStore(path)
	case DriverMemory:
		return memoryStore{spotify.NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
