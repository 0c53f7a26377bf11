package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/lens"
	"github.com/zoobzio/lens/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func noEnv(string) (string, bool) { return "", false }

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    command
		wantErr bool
	}{
		{line: "s spider", want: command{kind: cmdSearch, term: "spider"}},
		{line: "search  iron man ", want: command{kind: cmdSearch, term: "iron man"}},
		{line: "s", want: command{kind: cmdSearch}},
		{line: "n", want: command{kind: cmdNext}},
		{line: "p", want: command{kind: cmdPrev}},
		{line: "l 25", want: command{kind: cmdLimit, limit: 25}},
		{line: "l many", wantErr: true},
		{line: "q", want: command{kind: cmdQuit}},
		{line: "jump", wantErr: true},
		{line: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--config", "lens.yaml", "-t", "spi", "--limit", "25", "--watch-config", "--log-level", "debug"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, options{configPath: "lens.yaml", term: "spi", limit: 25, logLevel: "debug", watchConfig: true}, opts)

	_, err = parseFlags([]string{"--watch-config"}, io.Discard)
	assert.Error(t, err)

	_, err = parseFlags([]string{"extra"}, io.Discard)
	assert.Error(t, err)
}

func TestRun_MissingAPIKey(t *testing.T) {
	var errOut syncBuffer
	code := run(context.Background(), nil, noEnv, strings.NewReader(""), io.Discard, &errOut)

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "APIKey")
}

func TestRun_SearchSession(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
		name := r.URL.Query().Get("nameStartsWith")
		if name == "" {
			name = "Abomination"
		}
		fmt.Fprintf(w, `{"code":200,"status":"Ok","data":{"offset":0,"limit":10,"total":1,"count":1,"results":[{"id":1,"name":%q}]}}`, name)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "lens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(
		"base_url: %s\napi_key: k\ndebounce: 0s\nlimits: [10, 20]\ndefault_limit: 10\nlog_level: disabled\n", srv.URL)), 0o600))

	in, writeIn := io.Pipe()
	var out syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(context.Background(), []string{"--config", path}, noEnv, in, &out, io.Discard)
	}()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Abomination") }, 2*time.Second, 10*time.Millisecond)

	_, _ = io.WriteString(writeIn, "s Thor\n")
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Thor") }, 2*time.Second, 10*time.Millisecond)

	_, _ = io.WriteString(writeIn, "l 7\n")
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "allowed: [10 20]") }, 2*time.Second, 10*time.Millisecond)

	_, _ = io.WriteString(writeIn, "q\n")
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after quit")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, queries, "apikey=k&limit=10&nameStartsWith=Thor&offset=0")
}

type vendorCodec struct{ lens.JSONCodec }

func (vendorCodec) ContentType() string { return "application/vnd.lens+json" }

func TestNewSource_AcceptFollowsCodec(t *testing.T) {
	accept := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept <- r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	src, err := newSource(&cfg, vendorCodec{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), lens.Params{APIKey: "k", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.lens+json", <-accept)
}
