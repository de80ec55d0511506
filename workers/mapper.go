package workers

import (
	"context"
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/lakeb2b/scraper/engine"
	"github.com/lakeb2b/scraper/parser"
	"github.com/lakeb2b/scraper/urlutil"
)

// Crawl pacing: pages fetched per wave and the politeness pause between
// waves.
const (
	crawlWaveSize  = 10
	crawlWaveDelay = 100 * time.Millisecond
	sitemapDepth   = 3
)

// sitemapIndex is a sitemap index XML file.
type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

// urlset is a regular sitemap XML file.
type urlset struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

// DomainMapper discovers a site's URL set: sitemaps first (including
// robots.txt Sitemap: directives and sitemap indexes), bounded BFS crawl as
// the fallback. Mapping always uses the cheap HTTP tier; a blocked page
// just contributes no out-links.
type DomainMapper struct {
	domain   string
	fetcher  engine.Fetcher
	log      *slog.Logger
	maxPages int
}

// NewDomainMapper builds a mapper for one domain. fetcher should be the
// tier-1 HTTP fetcher.
func NewDomainMapper(domain string, fetcher engine.Fetcher, maxPages int) *DomainMapper {
	if maxPages <= 0 {
		maxPages = 100
	}
	return &DomainMapper{
		domain:   domain,
		fetcher:  fetcher,
		log:      slog.With("component", "mapper", "domain", domain),
		maxPages: maxPages,
	}
}

// Map returns classified URLs for the domain, capped at maxPages.
func (m *DomainMapper) Map(ctx context.Context) []parser.Classification {
	base := urlutil.EnsureScheme(m.domain)

	urls := m.fromSitemaps(ctx, base)
	if len(urls) > 0 {
		m.log.Info("mapped via sitemap", "urls", len(urls))
	} else {
		urls = m.crawl(ctx, base)
		m.log.Info("mapped via crawl", "urls", len(urls))
	}

	if len(urls) > m.maxPages {
		urls = urls[:m.maxPages]
	}
	return parser.ClassifyURLs(urls)
}

// fromSitemaps tries <base>/sitemap.xml, then any Sitemap: directives in
// robots.txt.
func (m *DomainMapper) fromSitemaps(ctx context.Context, base string) []string {
	urls := m.fetchSitemap(ctx, base+"/sitemap.xml", sitemapDepth)
	if len(urls) == 0 {
		for _, sitemapURL := range m.robotsSitemaps(ctx, base+"/robots.txt") {
			urls = append(urls, m.fetchSitemap(ctx, sitemapURL, sitemapDepth)...)
			if len(urls) >= m.maxPages {
				break
			}
		}
	}

	var keep []string
	for _, u := range urls {
		if urlutil.IsScrapeWorthy(u) && urlutil.SameDomain(u, base) {
			keep = append(keep, u)
		}
	}
	return urlutil.Dedupe(keep)
}

// fetchSitemap fetches and parses one sitemap URL. Sitemap indexes recurse
// into their children up to the depth limit.
func (m *DomainMapper) fetchSitemap(ctx context.Context, sitemapURL string, depth int) []string {
	if depth <= 0 {
		return nil
	}
	r := m.fetcher.Fetch(ctx, sitemapURL)
	// Not OK(): legitimate sitemaps can be tiny, which the thin-body block
	// heuristic would misread. Challenge pages are still rejected.
	if r.Err != nil || r.StatusCode != 200 || r.CaptchaDetected || r.HTML == "" {
		return nil
	}
	body := []byte(r.HTML)

	var idx sitemapIndex
	if err := xml.Unmarshal(body, &idx); err == nil && len(idx.Sitemaps) > 0 {
		var urls []string
		for _, s := range idx.Sitemaps {
			if s.Loc == "" {
				continue
			}
			urls = append(urls, m.fetchSitemap(ctx, strings.TrimSpace(s.Loc), depth-1)...)
			if len(urls) >= m.maxPages {
				break
			}
		}
		return urls
	}

	var us urlset
	if err := xml.Unmarshal(body, &us); err != nil {
		return nil
	}
	var urls []string
	for _, u := range us.URLs {
		if u.Loc != "" {
			urls = append(urls, strings.TrimSpace(u.Loc))
		}
	}
	return urls
}

// robotsSitemaps extracts Sitemap: directives from robots.txt.
func (m *DomainMapper) robotsSitemaps(ctx context.Context, robotsURL string) []string {
	r := m.fetcher.Fetch(ctx, robotsURL)
	if r.Err != nil || r.StatusCode != 200 || r.CaptchaDetected {
		return nil
	}
	var sitemaps []string
	for _, line := range strings.Split(r.HTML, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < len("sitemap:") || !strings.EqualFold(line[:len("sitemap:")], "sitemap:") {
			continue
		}
		if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
			sitemaps = append(sitemaps, u)
		}
	}
	return sitemaps
}

// crawl is the sitemap fallback: a BFS from the root in waves of
// crawlWaveSize pages, keeping same-domain scrape-worthy links until the
// page cap is reached or the frontier drains.
func (m *DomainMapper) crawl(ctx context.Context, base string) []string {
	discovered := []string{base}
	seen := map[string]bool{base: true}
	frontier := []string{base}

	for len(frontier) > 0 && len(discovered) < m.maxPages {
		if ctx.Err() != nil {
			break
		}
		wave := frontier
		if len(wave) > crawlWaveSize {
			wave = wave[:crawlWaveSize]
			frontier = frontier[crawlWaveSize:]
		} else {
			frontier = nil
		}

		results := m.fetchWave(ctx, wave)
		for _, r := range results {
			if r == nil || !r.OK() {
				continue
			}
			for _, link := range m.pageLinks(r.HTML, r.URL, base) {
				if seen[link] {
					continue
				}
				seen[link] = true
				discovered = append(discovered, link)
				frontier = append(frontier, link)
				if len(discovered) >= m.maxPages {
					return discovered
				}
			}
		}
		time.Sleep(crawlWaveDelay)
	}
	return discovered
}

// fetchWave fetches one wave of pages concurrently.
func (m *DomainMapper) fetchWave(ctx context.Context, wave []string) []*engine.FetchResult {
	results := make([]*engine.FetchResult, len(wave))
	done := make(chan struct{})
	for i, u := range wave {
		go func(i int, u string) {
			results[i] = m.fetcher.Fetch(ctx, u)
			done <- struct{}{}
		}(i, u)
	}
	for range wave {
		<-done
	}
	return results
}

// pageLinks extracts same-domain scrape-worthy links from one page.
func (m *DomainMapper) pageLinks(html, pageURL, base string) []string {
	p, err := parser.Parse(html, pageURL)
	if err != nil {
		return nil
	}
	var keep []string
	for _, link := range p.Links("a") {
		if urlutil.SameDomain(link, base) {
			keep = append(keep, link)
		}
	}
	return keep
}
