package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lakeb2b/scraper/engine"
)

func okResult(url string) *engine.FetchResult {
	return &engine.FetchResult{
		URL:        url,
		StatusCode: 200,
		HTML:       "<html>" + strings.Repeat("content ", 50) + "</html>",
	}
}

func TestCacheHitAndMiss(t *testing.T) {
	c := New(10)
	key := Key("https://example.com/blog", engine.StrategyBasicHTTP)

	_, hit := c.Get(key, time.Minute)
	assert.False(t, hit)

	c.Set(key, okResult("https://example.com/blog"))
	got, hit := c.Get(key, time.Minute)
	assert.True(t, hit)
	assert.Equal(t, "https://example.com/blog", got.URL)

	_, hit = c.Get(key, 0)
	assert.False(t, hit, "maxAge <= 0 disables lookup")
}

func TestCacheKeyIncludesStrategy(t *testing.T) {
	a := Key("https://example.com/", engine.StrategyBasicHTTP)
	b := Key("https://example.com/", engine.StrategyHeadless)
	assert.NotEqual(t, a, b)
}

func TestCacheSkipsBlockedResults(t *testing.T) {
	c := New(10)
	key := Key("https://example.com/", engine.StrategyBasicHTTP)

	c.Set(key, &engine.FetchResult{URL: "https://example.com/", StatusCode: 403, Blocked: true})
	_, hit := c.Get(key, time.Minute)
	assert.False(t, hit, "blocked results must not be cached")

	c.Set(key, nil)
	_, hit = c.Get(key, time.Minute)
	assert.False(t, hit)
}

func TestCacheEvictsAtCapacity(t *testing.T) {
	c := New(2)
	c.Set(Key("https://a.com/", "basic_http"), okResult("https://a.com/"))
	c.Set(Key("https://b.com/", "basic_http"), okResult("https://b.com/"))
	c.Set(Key("https://c.com/", "basic_http"), okResult("https://c.com/"))

	hits := 0
	for _, u := range []string{"https://a.com/", "https://b.com/", "https://c.com/"} {
		if _, hit := c.Get(Key(u, "basic_http"), time.Minute); hit {
			hits++
		}
	}
	assert.Equal(t, 2, hits, "capacity is enforced by evicting one entry")
}
