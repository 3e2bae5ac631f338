package spotify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotigo/internal/store"
	"github.com/toozej/spotigo/pkg/config"
	pkgspotify "github.com/toozej/spotigo/pkg/spotify"
)

// fakeAPI serves the Web API under /v1/ and a token endpoint that grants
// client tokens.
type fakeAPI struct {
	*httptest.Server
	mux      *http.ServeMux
	apiCalls atomic.Int32
	// token answers the token endpoint; it grants client tokens by default.
	token http.HandlerFunc
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux()}
	f.token = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"access_token":"client-token","token_type":"Bearer","expires_in":3600}`)
	}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token" {
			f.token(w, r)
			return
		}
		f.apiCalls.Add(1)
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

func (f *fakeAPI) config() config.SpotifyConfig {
	return config.SpotifyConfig{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		RedirectURL:  "http://127.0.0.1:8080/callback",
		Market:       "US",
		Timeout:      5 * time.Second,
		BaseURL:      f.URL + "/v1/",
		TokenURL:     f.URL + "/api/token",
		AuthorizeURL: f.URL + "/authorize",
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func memoryStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(store.DriverMemory, "")
	require.NoError(t, err)
	return st
}

// loggedInService returns a service whose session restored alice's login.
func loggedInService(t *testing.T, f *fakeAPI) *Service {
	t.Helper()
	f.handle("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"id":"alice","type":"user","display_name":"Alice"}`)
	})
	ctx := context.Background()
	st := memoryStore(t)
	require.NoError(t, st.Save(ctx, pkgspotify.Credentials{Subject: "alice", AccessToken: "alice-token"}))
	s := NewService(ctx, f.config(), st, quietLogger())
	require.NotNil(t, s.Client())
	require.True(t, s.IsAuthenticated())
	return s
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func configWithoutCredentials() config.SpotifyConfig {
	return config.SpotifyConfig{RedirectURL: "http://127.0.0.1:8080/callback"}
}
