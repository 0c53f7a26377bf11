package integration

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/zoobzio/lens/hero"
	lenstest "github.com/zoobzio/lens/testing"
)

// upstream serves heroes whose names start with the requested prefix and
// counts the requests it receives.
type upstream struct {
	*httptest.Server
	requests atomic.Int32
	roster   []string
}

func newUpstream(t *testing.T, roster ...string) *upstream {
	t.Helper()
	u := &upstream{roster: roster}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.requests.Add(1)
	if r.URL.Query().Get("apikey") == "" {
		http.Error(w, `{"code":"MissingParameter"}`, http.StatusConflict)
		return
	}

	prefix := strings.ToLower(r.URL.Query().Get("nameStartsWith"))
	var matches []hero.Hero
	for i, name := range u.roster {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			matches = append(matches, hero.Hero{ID: i + 1, Name: name})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(lenstest.EnvelopeJSON(len(matches), 0, len(matches), matches))
}

func (u *upstream) count() int {
	return int(u.requests.Load())
}
