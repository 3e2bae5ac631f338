package spotify

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
)

// fakeSpotify serves both the Web API under /v1/ and the token endpoint.
type fakeSpotify struct {
	*httptest.Server
	mux        *http.ServeMux
	apiCalls   atomic.Int32
	tokenCalls atomic.Int32
}

func newFakeSpotify(t *testing.T) *fakeSpotify {
	t.Helper()
	f := &fakeSpotify{mux: http.NewServeMux()}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token" {
			f.tokenCalls.Add(1)
		} else {
			f.apiCalls.Add(1)
		}
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSpotify) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

// client returns a Client pointed at f that already holds a client token.
func (f *fakeSpotify) client(t *testing.T) *Client {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewClient(Config{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		BaseURL:      f.URL + "/v1/",
		TokenURL:     f.URL + "/api/token",
		AuthorizeURL: f.URL + "/authorize",
		RedirectURL:  "http://127.0.0.1:8080/callback",
		HTTPClient:   f.Client(),
		Logger:       logger,
	})
	c.clientToken = "client-token"
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const expiredBody = `{"error":{"status":401,"message":"The access token expired"}}`
