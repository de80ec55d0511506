package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeb2b/scraper/config"
)

func newTestHTTPFetcher() *HTTPFetcher {
	return NewHTTPFetcher(config.FetchConfig{
		Timeout:      5 * time.Second,
		MaxBodyBytes: 1 << 20,
	}, 0.0001)
}

func TestHTTPFetcherFetchesCleanPage(t *testing.T) {
	body := "<html><head><title>Acme</title></head><body>" +
		strings.Repeat("real content ", 40) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	r := newTestHTTPFetcher().Fetch(context.Background(), srv.URL)

	require.NoError(t, r.Err)
	require.True(t, r.OK())
	assert.Equal(t, 200, r.StatusCode)
	assert.Equal(t, "Acme", r.Title)
	assert.False(t, r.Blocked)
	assert.False(t, r.CaptchaDetected)
	assert.InDelta(t, 0.0001, r.CostUSD, 1e-9)
}

func TestHTTPFetcherFlagsCaptchaOn200(t *testing.T) {
	// Challenge pages often come back as 200; the fetcher itself must flag
	// them so direct consumers don't treat them as content.
	body := "<html><body>" + strings.Repeat("please verify ", 30) +
		`<div class="g-recaptcha"></div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	r := newTestHTTPFetcher().Fetch(context.Background(), srv.URL)

	require.NoError(t, r.Err)
	assert.True(t, r.CaptchaDetected)
	assert.False(t, r.OK())
}

func TestHTTPFetcherFlagsBlockingStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := newTestHTTPFetcher().Fetch(context.Background(), srv.URL)

	assert.True(t, r.Blocked)
	assert.False(t, r.OK())
}

func TestHTTPFetcherFlagsThinBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	r := newTestHTTPFetcher().Fetch(context.Background(), srv.URL)

	assert.True(t, r.Blocked, "a near-empty 200 body is a block shell")
	assert.False(t, r.OK())
}
