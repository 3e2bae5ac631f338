package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotigo/pkg/spotify"
)

// openAll returns one instance of every driver.
func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	stores := map[string]Store{}
	for driver, path := range map[string]string{
		DriverSQLite: ":memory:",
		DriverFile:   filepath.Join(dir, "nested", "credentials.json"),
		DriverMemory: "",
	} {
		s, err := Open(driver, path)
		require.NoError(t, err, driver)
		t.Cleanup(func() { _ = s.Close() })
		stores[driver] = s
	}
	return stores
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	for driver, s := range openAll(t) {
		t.Run(driver, func(t *testing.T) {
			_, err := s.Load(ctx, "alice")
			assert.ErrorIs(t, err, spotify.ErrCredentialsNotFound)

			require.NoError(t, s.Save(ctx, spotify.Credentials{
				Subject:      "alice",
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				TokenType:    "Bearer",
				Expiry:       expiry,
			}))
			require.NoError(t, s.Save(ctx, spotify.Credentials{Subject: "bob", AccessToken: "bob-token"}))

			got, err := s.Load(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Subject)
			assert.Equal(t, "access-1", got.AccessToken)
			assert.Equal(t, "refresh-1", got.RefreshToken)
			assert.Equal(t, "Bearer", got.TokenType)
			assert.True(t, expiry.Equal(got.Expiry))

			// last write wins
			require.NoError(t, s.Save(ctx, spotify.Credentials{Subject: "alice", AccessToken: "access-2", RefreshToken: "refresh-1"}))
			got, err = s.Load(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, "access-2", got.AccessToken)

			subjects, err := s.Subjects(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"alice", "bob"}, subjects)

			require.NoError(t, s.Delete(ctx, "alice"))
			require.NoError(t, s.Delete(ctx, "nobody"))
			_, err = s.Load(ctx, "alice")
			assert.ErrorIs(t, err, spotify.ErrCredentialsNotFound)
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("redis", "")
	assert.Error(t, err)
}

func TestStoreBacksClientRefresh(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	c := spotify.NewClient(spotify.Config{Store: s})
	require.NoError(t, c.RegisterUserCredentials(ctx, spotify.Credentials{Subject: "alice", AccessToken: "tok"}))

	creds, err := c.Credentials(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.AccessToken)
}
