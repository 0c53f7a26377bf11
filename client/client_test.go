package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/lens"
)

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "::nope", "ftp://example.com", "http://"} {
		_, err := New(raw)
		assert.Error(t, err, "New(%q)", raw)
	}
}

func TestNew_Endpoint(t *testing.T) {
	c, err := New("https://gateway.example.com/?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example.com/v1/public/characters", c.Endpoint())

	c, err = New("https://gateway.example.com/api", WithPath("v2/heroes"))
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example.com/api/v2/heroes", c.Endpoint())
}

func TestClient_Fetch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"data":{"total":0,"results":[]}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx := lens.WithRequestID(context.Background(), "req-42")
	body, err := c.Fetch(ctx, lens.Params{APIKey: "k", Limit: 25, Offset: 50, NameStartsWith: "spi"})

	require.NoError(t, err)
	assert.Equal(t, `{"code":200,"data":{"total":0,"results":[]}}`, string(body))
	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/v1/public/characters", got.URL.Path)
	assert.Equal(t, "apikey=k&limit=25&nameStartsWith=spi&offset=50", got.URL.RawQuery)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "req-42", got.Header.Get(HeaderRequestID))
}

func TestClient_Fetch_OmitsEmptySearch(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), lens.Params{APIKey: "k", Limit: 100})

	require.NoError(t, err)
	assert.Equal(t, "apikey=k&limit=100&offset=0", query)
	assert.NotContains(t, query, "nameStartsWith")
}

func TestClient_Fetch_ErrorStatus(t *testing.T) {
	tests := []int{http.StatusUnauthorized, http.StatusConflict, http.StatusTooManyRequests, http.StatusInternalServerError}

	for _, status := range tests {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"code":"InvalidCredentials"}`, status)
			}))
			defer srv.Close()

			c, err := New(srv.URL)
			require.NoError(t, err)
			_, err = c.Fetch(context.Background(), lens.Params{APIKey: "secret", Limit: 10})

			var te *lens.TransportError
			require.True(t, errors.As(err, &te), "expected TransportError, got %v", err)
			assert.Equal(t, status, te.Status)
			assert.Equal(t, srv.URL+DefaultPath, te.URL)
			assert.NotContains(t, err.Error(), "secret")
		})
	}
}

func TestClient_Fetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), lens.Params{APIKey: "secret", Limit: 10})

	var te *lens.TransportError
	require.True(t, errors.As(err, &te), "expected TransportError, got %v", err)
	assert.Zero(t, te.Status)
	assert.Error(t, te.Err)
	assert.False(t, strings.Contains(err.Error(), "secret"), "API key leaked: %v", err)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), lens.Params{Limit: 10})

	var te *lens.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestNew_TimeoutAppliesAfterHTTPClient(t *testing.T) {
	shared := &http.Client{}

	c, err := New("https://gateway.example.com", WithTimeout(time.Second), WithHTTPClient(shared))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.http.Timeout)
	assert.Zero(t, shared.Timeout, "caller's client is not mutated")

	c, err = New("https://gateway.example.com", WithHTTPClient(nil), WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.http.Timeout)
}

func TestClient_Fetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Fetch(ctx, lens.Params{Limit: 10})

	assert.ErrorIs(t, err, context.Canceled)
}
