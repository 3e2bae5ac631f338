package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotigo/pkg/spotify"
)

func TestFileStorePermissionsAndPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, spotify.Credentials{Subject: "alice", AccessToken: "tok"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.Load(context.Background(), "alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, spotify.ErrCredentialsNotFound)
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.Load(context.Background(), "alice")
	assert.ErrorIs(t, err, spotify.ErrCredentialsNotFound)
}
