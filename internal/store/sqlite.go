package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/toozej/spotigo/pkg/spotify"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps user credentials in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath. ":memory:" gives a
// private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS credentials (
			subject TEXT PRIMARY KEY,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			token_type TEXT NOT NULL DEFAULT '',
			expiry INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, subject string) (spotify.Credentials, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM credentials
		WHERE subject = ?
	`
	creds := spotify.Credentials{Subject: subject}
	var expiry int64
	err := s.db.QueryRowContext(ctx, query, subject).Scan(
		&creds.AccessToken,
		&creds.RefreshToken,
		&creds.TokenType,
		&expiry,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return spotify.Credentials{}, spotify.ErrCredentialsNotFound
	}
	if err != nil {
		return spotify.Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	if expiry > 0 {
		creds.Expiry = time.Unix(expiry, 0)
	}
	return creds, nil
}

func (s *SQLiteStore) Save(ctx context.Context, creds spotify.Credentials) error {
	query := `
		INSERT INTO credentials (subject, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(subject) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`
	var expiry int64
	if !creds.Expiry.IsZero() {
		expiry = creds.Expiry.Unix()
	}
	if _, err := s.db.ExecContext(ctx, query,
		creds.Subject,
		creds.AccessToken,
		creds.RefreshToken,
		creds.TokenType,
		expiry,
	); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, subject string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE subject = ?`, subject); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// Subjects lists stored subjects, most recently updated first.
func (s *SQLiteStore) Subjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT subject FROM credentials ORDER BY updated_at DESC, subject`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}
