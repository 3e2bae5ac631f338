package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/toozej/spotigo/internal/store"
	"github.com/toozej/spotigo/pkg/config"
	"github.com/toozej/spotigo/pkg/spotify"
)

// fakeAPI serves the Web API under /v1/ and grants client tokens.
type fakeAPI struct {
	*httptest.Server
	mux *http.ServeMux
}

// useFakeAPI points conf at a fake API and a credential file in a temp dir.
func useFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{mux: http.NewServeMux()}
	f.mux.HandleFunc("POST /api/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"access_token":"client-token","token_type":"Bearer","expires_in":3600}`)
	})
	f.Server = httptest.NewServer(f.mux)
	t.Cleanup(f.Close)

	orig := conf
	t.Cleanup(func() { conf = orig })
	conf = config.Config{
		Spotify: config.SpotifyConfig{
			ClientID:     "app-id",
			ClientSecret: "app-secret",
			RedirectURL:  "http://127.0.0.1:8080/callback",
			Timeout:      5 * time.Second,
			BaseURL:      f.URL + "/v1/",
			TokenURL:     f.URL + "/api/token",
			AuthorizeURL: f.URL + "/authorize",
		},
		Store: config.StoreConfig{
			Driver: store.DriverFile,
			Path:   filepath.Join(t.TempDir(), "credentials.json"),
		},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
	}

	origOut := log.StandardLogger().Out
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(origOut) })
	return f
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

// loginAlice stores a login for alice and serves her profile.
func (f *fakeAPI) loginAlice(t *testing.T) {
	t.Helper()
	f.handle("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"id":"alice","type":"user","display_name":"Alice","country":"SE","product":"premium"}`)
	})
	st, err := store.Open(conf.Store.Driver, conf.Store.Path)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Save(context.Background(), spotify.Credentials{Subject: "alice", AccessToken: "alice-token"}))
}

// run executes cmd with args and returns what it printed.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
