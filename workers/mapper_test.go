package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeb2b/scraper/models"
)

func classificationURLs(t *testing.T, m *DomainMapper) []string {
	t.Helper()
	classified := m.Map(context.Background())
	urls := make([]string, len(classified))
	for i, c := range classified {
		urls[i] = c.URL
	}
	return urls
}

func TestMapperPrefersSitemap(t *testing.T) {
	f := newStubFetcher(map[string]stubPage{
		"https://example.com/sitemap.xml": {status: 200, html: siteSitemap},
		"https://example.com":             {status: 200, html: wpHome},
	})

	m := NewDomainMapper(siteDomain, f, 100)
	urls := classificationURLs(t, m)

	assert.ElementsMatch(t, []string{
		"https://example.com/blog",
		"https://example.com/pricing",
		"https://example.com/about/team",
	}, urls)
	assert.Zero(t, f.callCount("https://example.com"), "sitemap hit must skip the crawler")
}

func TestMapperSitemapIndexRecursion(t *testing.T) {
	index := `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap-posts.xml</loc></sitemap>
</sitemapindex>`
	f := newStubFetcher(map[string]stubPage{
		"https://example.com/sitemap.xml":       {status: 200, html: index},
		"https://example.com/sitemap-posts.xml": {status: 200, html: siteSitemap},
	})

	m := NewDomainMapper(siteDomain, f, 100)
	urls := classificationURLs(t, m)
	assert.Contains(t, urls, "https://example.com/blog")
	assert.Contains(t, urls, "https://example.com/pricing")
}

func TestMapperRobotsSitemapDirective(t *testing.T) {
	robots := "User-agent: *\nDisallow: /admin\nSitemap: https://example.com/custom-sitemap.xml\n"
	f := newStubFetcher(map[string]stubPage{
		"https://example.com/robots.txt":         {status: 200, html: robots},
		"https://example.com/custom-sitemap.xml": {status: 200, html: siteSitemap},
	})

	m := NewDomainMapper(siteDomain, f, 100)
	urls := classificationURLs(t, m)
	assert.Contains(t, urls, "https://example.com/blog")
}

func TestMapperCrawlFallback(t *testing.T) {
	home := `<!DOCTYPE html><html><body>
<a href="/blog">Blog</a>
<a href="/pricing">Pricing</a>
<a href="https://other-site.com/page">External</a>
<a href="/brochure.pdf">PDF</a>
<a href="mailto:info@example.com">Mail</a>
` + padding + `</body></html>`

	f := newStubFetcher(map[string]stubPage{
		"https://example.com":         {status: 200, html: home},
		"https://example.com/blog":    {status: 200, html: wpBlogLanding},
		"https://example.com/pricing": {status: 200, html: "<html><body>" + padding + "</body></html>"},
	})

	m := NewDomainMapper(siteDomain, f, 100)
	classified := m.Map(context.Background())

	byURL := map[string]models.DataType{}
	for _, c := range classified {
		byURL[c.URL] = c.DataType
	}
	assert.Equal(t, models.DataTypeBlogURL, byURL["https://example.com/blog"])
	assert.Equal(t, models.DataTypePricing, byURL["https://example.com/pricing"])
	assert.NotContains(t, byURL, "https://other-site.com/page")
	assert.NotContains(t, byURL, "https://example.com/brochure.pdf")
}

func TestMapperRespectsPageCap(t *testing.T) {
	f := newStubFetcher(map[string]stubPage{
		"https://example.com/sitemap.xml": {status: 200, html: siteSitemap},
	})

	m := NewDomainMapper(siteDomain, f, 2)
	classified := m.Map(context.Background())
	require.Len(t, classified, 2)
}

func TestMapperBlockedPageContributesNoLinks(t *testing.T) {
	home := `<html><body><a href="/blocked">Blocked</a><a href="/open">Open</a>` + padding + `</body></html>`
	f := newStubFetcher(map[string]stubPage{
		"https://example.com":         {status: 200, html: home},
		"https://example.com/blocked": {status: 403, html: ""},
		"https://example.com/open":    {status: 200, html: `<html><body><a href="/deeper">Deeper</a>` + padding + `</body></html>`},
		"https://example.com/deeper":  {status: 200, html: "<html><body>" + padding + "</body></html>"},
	})

	m := NewDomainMapper(siteDomain, f, 100)
	urls := classificationURLs(t, m)

	// The crawl reaches /deeper through /open even though /blocked failed.
	assert.Contains(t, urls, "https://example.com/deeper")
	assert.Contains(t, urls, "https://example.com/blocked")
}

func TestMapperCaptchaPageContributesNoLinks(t *testing.T) {
	challenge := `<html><body><div class="g-recaptcha">Please verify you are human.</div>
<a href="/hidden">Hidden</a>` + padding + `</body></html>`
	home := `<html><body><a href="/verify">Verify</a><a href="/open">Open</a>` + padding + `</body></html>`
	f := newStubFetcher(map[string]stubPage{
		"https://example.com":        {status: 200, html: home},
		"https://example.com/verify": {status: 200, html: challenge},
		"https://example.com/open":   {status: 200, html: "<html><body>" + padding + "</body></html>"},
	})

	m := NewDomainMapper(siteDomain, f, 100)
	urls := classificationURLs(t, m)

	// A 200 challenge page is still discovered as a link, but its own
	// out-links are discarded.
	assert.Contains(t, urls, "https://example.com/verify")
	assert.NotContains(t, urls, "https://example.com/hidden")
}

func TestMapperCaptchaSitemapFallsBackToCrawl(t *testing.T) {
	challenge := `<html><body><div class="g-recaptcha">Please verify you are human.</div>` + padding + `</body></html>`
	home := `<html><body><a href="/blog">Blog</a>` + padding + `</body></html>`
	f := newStubFetcher(map[string]stubPage{
		"https://example.com/sitemap.xml": {status: 200, html: challenge},
		"https://example.com":             {status: 200, html: home},
		"https://example.com/blog":        {status: 200, html: wpBlogLanding},
	})

	m := NewDomainMapper(siteDomain, f, 100)
	urls := classificationURLs(t, m)

	assert.Contains(t, urls, "https://example.com/blog")
	assert.Equal(t, 1, f.callCount("https://example.com"), "captcha'd sitemap must not count as a sitemap hit")
}
