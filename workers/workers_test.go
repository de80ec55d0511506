package workers

import (
	"context"
	"strings"
	"sync"

	"github.com/lakeb2b/scraper/engine"
)

// stubFetcher serves canned pages keyed by URL and reports as the HTTP tier.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]stubPage
	calls map[string]int
}

type stubPage struct {
	status  int
	html    string
	headers map[string]string
}

func newStubFetcher(pages map[string]stubPage) *stubFetcher {
	return &stubFetcher{pages: pages, calls: map[string]int{}}
}

func (f *stubFetcher) Tier() engine.Tier { return engine.TierBasicHTTP }

func (f *stubFetcher) Fetch(ctx context.Context, rawURL string) *engine.FetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[rawURL]++

	r := &engine.FetchResult{
		URL:      rawURL,
		FinalURL: rawURL,
		Tier:     engine.TierBasicHTTP,
		Strategy: engine.StrategyBasicHTTP,
		CostUSD:  0.0001,
	}
	pg, ok := f.pages[rawURL]
	if !ok {
		r.StatusCode = 404
		engine.Evaluate(r)
		return r
	}
	r.StatusCode = pg.status
	r.HTML = pg.html
	r.Headers = pg.headers
	// Fetchers set the block and captcha flags before returning.
	engine.Evaluate(r)
	return r
}

func (f *stubFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *stubFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// padding pushes fixture pages past the tiny-body block threshold.
var padding = strings.Repeat("<p>Lorem ipsum dolor sit amet, consectetur adipiscing elit.</p>", 8)

const siteDomain = "example.com"

var wpHome = `<!DOCTYPE html><html><head><title>Acme Analytics</title>
<script async src="https://www.googletagmanager.com/gtag/js?id=G-XYZ"></script>
<link rel="stylesheet" href="https://example.com/wp-content/themes/acme/style.css">
</head><body><main>` + padding + `</main></body></html>`

var wpBlogLanding = `<!DOCTYPE html><html><head><title>Acme Blog</title></head><body>
<div id="main">
<article class="post"><h2 class="entry-title"><a href="/blog/first-post">First Post</a></h2></article>
<article class="post"><h2 class="entry-title"><a href="/blog/second-post">Second Post</a></h2></article>
<article class="post"><h2 class="entry-title"><a href="/blog/first-post">First Post again</a></h2></article>
</div>` + padding + `</body></html>`

var wpArticle = `<!DOCTYPE html><html><head><title>First Post</title>
<meta name="author" content="Jane Doe"><meta name="description" content="A very first post.">
</head><body><article>
<h1 class="entry-title">First Post</h1>
<time class="entry-date" datetime="2024-03-01">March 1, 2024</time>
<div class="entry-content">` + padding + `</div>
</article></body></html>`

var siteSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/blog</loc></url>
  <url><loc>https://example.com/pricing</loc></url>
  <url><loc>https://example.com/about/team</loc></url>
</urlset>`
