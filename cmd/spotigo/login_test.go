package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotigo/internal/types/typestest"
)

func TestHandleSpotifyCallback(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		completeErr  error
		expectStatus int
		expectErr    string
	}{
		{name: "success", query: "?code=abc&state=xyz", expectStatus: http.StatusOK},
		{name: "spotify error", query: "?error=access_denied", expectStatus: http.StatusBadRequest, expectErr: "access_denied"},
		{name: "missing code", query: "?state=xyz", expectStatus: http.StatusBadRequest, expectErr: "no authorization code"},
		{name: "exchange fails", query: "?code=abc&state=bad", completeErr: errors.New("invalid state parameter"), expectStatus: http.StatusInternalServerError, expectErr: "invalid state parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCode, gotState string
			mock := &typestest.SpotifyService{
				CompleteAuthFunc: func(ctx context.Context, code, state string) error {
					gotCode, gotState = code, state
					return tt.completeErr
				},
			}
			done := make(chan error, 1)
			rec := httptest.NewRecorder()

			handleSpotifyCallback(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil), mock, done)

			assert.Equal(t, tt.expectStatus, rec.Code)
			err := <-done
			if tt.expectErr != "" {
				assert.ErrorContains(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "abc", gotCode)
			assert.Equal(t, "xyz", gotState)
			assert.Contains(t, rec.Body.String(), "Authentication Successful")
		})
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestAuthenticateSpotify(t *testing.T) {
	addr := freeAddr(t)
	completed := make(chan string, 1)
	mock := &typestest.SpotifyService{
		GetAuthURLFunc: func() string { return "https://accounts.example/authorize?state=s1" },
		CompleteAuthFunc: func(ctx context.Context, code, state string) error {
			completed <- code
			return nil
		},
	}

	go func() {
		url := fmt.Sprintf("http://%s/callback?code=the-code&state=s1", addr)
		for range 50 {
			resp, err := http.Get(url)
			if err == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
	}()

	var out bytes.Buffer
	require.NoError(t, authenticateSpotify(context.Background(), mock, addr, &out))
	assert.Equal(t, "the-code", <-completed)
	assert.Contains(t, out.String(), "https://accounts.example/authorize?state=s1")
}

func TestAuthenticateSpotify_Timeout(t *testing.T) {
	orig := loginTimeout
	loginTimeout = 50 * time.Millisecond
	defer func() { loginTimeout = orig }()

	err := authenticateSpotify(context.Background(), &typestest.SpotifyService{}, freeAddr(t), io.Discard)
	assert.ErrorContains(t, err, "authentication timeout")
}

func TestAuthenticateSpotify_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := authenticateSpotify(ctx, &typestest.SpotifyService{}, freeAddr(t), io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoginCommandsWithoutCredentials(t *testing.T) {
	useFakeAPI(t)
	conf.Spotify.ClientSecret = ""

	for _, cmd := range []func() *cobra.Command{newLoginCmd, newLogoutCmd, newWhoamiCmd} {
		_, err := run(t, cmd())
		assert.ErrorContains(t, err, "credentials are not configured")
	}
}

func TestWhoamiAndLogout(t *testing.T) {
	f := useFakeAPI(t)

	out, err := run(t, newWhoamiCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	f.loginAlice(t)

	out, err = run(t, newWhoamiCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Alice (alice)")
	assert.Contains(t, out, "Country: SE")
	assert.Contains(t, out, "Product: premium")

	out, err = run(t, newLogoutCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out alice")

	out, err = run(t, newWhoamiCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}
