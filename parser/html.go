// Package parser turns fetched HTML into the typed records the pipeline
// persists: classified URLs, articles, contacts, tech stacks, resources,
// and pricing plans.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lakeb2b/scraper/urlutil"
)

// Page is a parsed HTML document with link resolution against its base URL.
type Page struct {
	doc     *goquery.Document
	baseURL string
}

// Parse builds a Page from raw HTML.
func Parse(html, baseURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &Page{doc: doc, baseURL: baseURL}, nil
}

// Doc exposes the underlying document for template-specific selectors.
func (p *Page) Doc() *goquery.Document { return p.doc }

// BaseURL returns the URL the page was fetched from.
func (p *Page) BaseURL() string { return p.baseURL }

// Title returns the page title, falling back to the first h1.
func (p *Page) Title() string {
	if t := strings.TrimSpace(p.doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(p.doc.Find("h1").First().Text())
}

// Meta returns the content of a meta tag matched by name or property.
func (p *Page) Meta(name string) string {
	for _, attr := range []string{"name", "property"} {
		sel := "meta[" + attr + `="` + name + `"]`
		if content, ok := p.doc.Find(sel).First().Attr("content"); ok {
			return strings.TrimSpace(content)
		}
	}
	return ""
}

// Links extracts the href targets matched by the given selectors (default
// "a[href]"), resolved to absolute URLs, skipping anchors, mailto/tel, and
// javascript links. Order is preserved, duplicates removed.
func (p *Page) Links(selectors ...string) []string {
	if len(selectors) == 0 {
		selectors = []string{"a[href]"}
	}
	var urls []string
	for _, selector := range selectors {
		p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || !urlutil.IsScrapeWorthy(href) {
				return
			}
			abs, err := urlutil.Normalize(href, p.baseURL)
			if err != nil {
				return
			}
			urls = append(urls, abs)
		})
	}
	return urlutil.Dedupe(urls)
}

// Text returns the collapsed text of the first selector that matches.
func (p *Page) Text(selectors ...string) string {
	for _, selector := range selectors {
		sel := p.doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if t := collapseSpace(sel.Text()); t != "" {
			return t
		}
	}
	return ""
}

// categorySelectors are the common markup patterns for article tags.
var categorySelectors = []string{
	`a[rel="tag"]`,
	".category a",
	".tag a",
	".post-categories a",
	".entry-categories a",
}

// Categories extracts article categories/tags, deduplicated.
func (p *Page) Categories() []string {
	var cats []string
	seen := map[string]struct{}{}
	for _, selector := range categorySelectors {
		p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			t := strings.TrimSpace(s.Text())
			if t == "" {
				return
			}
			if _, ok := seen[t]; ok {
				return
			}
			seen[t] = struct{}{}
			cats = append(cats, t)
		})
	}
	return cats
}

// contentSelectors locate the main content region, most specific first.
var contentSelectors = []string{
	".entry-content",
	".post-content",
	"article",
	"main",
	".content",
}

// WordCount counts words in the main content region.
func (p *Page) WordCount() int {
	for _, selector := range contentSelectors {
		sel := p.doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if words := strings.Fields(sel.Text()); len(words) > 0 {
			return len(words)
		}
	}
	return 0
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
