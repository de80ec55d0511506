// Package templates holds the per-platform scraping templates: selector
// sets, pagination strategy, and platform detection for WordPress, HubSpot,
// Webflow, directory-style sites, and a generic fallback.
package templates

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/lakeb2b/scraper/parser"
	"github.com/lakeb2b/scraper/urlutil"
)

// SelectorSet groups the CSS selectors a template uses, each ordered most
// specific first.
type SelectorSet struct {
	BlogLanding    []string `json:"blog_landing,omitempty"`
	ArticleList    []string `json:"article_list,omitempty"`
	ArticleLink    []string `json:"article_link,omitempty"`
	ArticleTitle   []string `json:"article_title,omitempty"`
	ArticleDate    []string `json:"article_date,omitempty"`
	ArticleAuthor  []string `json:"article_author,omitempty"`
	ArticleContent []string `json:"article_content,omitempty"`
	TeamMembers    []string `json:"team_members,omitempty"`
	ContactInfo    []string `json:"contact_info,omitempty"`
	Navigation     []string `json:"navigation,omitempty"`
}

func (s SelectorSet) all() [][]string {
	return [][]string{
		s.BlogLanding, s.ArticleList, s.ArticleLink, s.ArticleTitle,
		s.ArticleDate, s.ArticleAuthor, s.ArticleContent,
		s.TeamMembers, s.ContactInfo, s.Navigation,
	}
}

// Pagination describes how a template walks listing pages.
type Pagination struct {
	Type         string `json:"type"` // numbered, next_link, load_more, infinite_scroll, none
	NextSelector string `json:"next_selector,omitempty"`
	PageParam    string `json:"page_param,omitempty"`
	MaxPages     int    `json:"max_pages"`
}

// Config is the full declarative description of one template.
type Config struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Description          string      `json:"description,omitempty"`
	PlatformSignals      []string    `json:"platform_signals,omitempty"`
	Selectors            SelectorSet `json:"selectors"`
	Pagination           Pagination  `json:"pagination"`
	BlogPathPatterns     []string    `json:"blog_path_patterns,omitempty"`
	ArticlePathPatterns  []string    `json:"article_path_patterns,omitempty"`
	TeamPathPatterns     []string    `json:"team_path_patterns,omitempty"`
	ResourcePathPatterns []string    `json:"resource_path_patterns,omitempty"`
	RateLimitMS          int         `json:"rate_limit_ms"`
	MaxConcurrentPages   int         `json:"max_concurrent_pages"`
}

// detectMode controls how Detect answers for the special templates.
type detectMode int

const (
	detectBySignals detectMode = iota
	detectNever                // directory: only used when explicitly selected
	detectAlways               // generic: the fallback
)

// Template pairs a Config with its detection behavior. All selector-driven
// extraction is shared; the configs carry the platform differences.
type Template struct {
	cfg  Config
	mode detectMode
}

func newTemplate(cfg Config, mode detectMode) *Template {
	// Selector sets are package constants; a typo here is a programming
	// error, caught the same way a bad regexp literal would be.
	for _, group := range cfg.Selectors.all() {
		for _, sel := range group {
			if _, err := cascadia.ParseGroup(sel); err != nil {
				panic("templates: invalid selector " + sel + " in " + cfg.ID + ": " + err.Error())
			}
		}
	}
	if cfg.Pagination.NextSelector != "" {
		if _, err := cascadia.ParseGroup(cfg.Pagination.NextSelector); err != nil {
			panic("templates: invalid pagination selector in " + cfg.ID + ": " + err.Error())
		}
	}
	return &Template{cfg: cfg, mode: mode}
}

// ID returns the template identifier ("wordpress", "generic", ...).
func (t *Template) ID() string { return t.cfg.ID }

// Config returns the template's declarative configuration.
func (t *Template) Config() Config { return t.cfg }

// RateLimit is the per-request delay this template asks for.
func (t *Template) RateLimit() time.Duration {
	return time.Duration(t.cfg.RateLimitMS) * time.Millisecond
}

// Detect reports whether the page looks like this template's platform.
func (t *Template) Detect(html string) bool {
	switch t.mode {
	case detectNever:
		return false
	case detectAlways:
		return true
	}
	lower := strings.ToLower(html)
	for _, signal := range t.cfg.PlatformSignals {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return false
}

// BlogURLs extracts article links from a blog landing page using the
// template's link selectors, resolved and deduplicated.
func (t *Template) BlogURLs(p *parser.Page) []string {
	var urls []string
	for _, selector := range t.cfg.Selectors.ArticleLink {
		p.Doc().Find(selector).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || !urlutil.IsScrapeWorthy(href) {
				return
			}
			if abs, err := urlutil.Normalize(href, p.BaseURL()); err == nil {
				urls = append(urls, abs)
			}
		})
	}
	return urlutil.Dedupe(urls)
}

// Article is the template-level view of one article page.
type Article struct {
	URL       string
	Title     string
	Author    string
	Date      string
	WordCount int
	Excerpt   string
}

// ExtractArticle pulls title, author, date and a content excerpt using the
// template's selectors. Missing fields stay empty.
func (t *Template) ExtractArticle(p *parser.Page) Article {
	article := Article{URL: p.BaseURL()}
	article.Title = p.Text(t.cfg.Selectors.ArticleTitle...)
	article.Author = p.Text(t.cfg.Selectors.ArticleAuthor...)

	for _, selector := range t.cfg.Selectors.ArticleDate {
		sel := p.Doc().Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if dt, ok := sel.Attr("datetime"); ok && dt != "" {
			article.Date = dt
			break
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			article.Date = strings.Join(strings.Fields(text), " ")
			break
		}
	}

	if content := p.Text(t.cfg.Selectors.ArticleContent...); content != "" {
		article.WordCount = len(strings.Fields(content))
		if len(content) > 300 {
			content = content[:300]
		}
		article.Excerpt = content
	}
	return article
}

// NextPageURL resolves the pagination link on a listing page, or "" when
// there is no next page or the template doesn't paginate by link.
func (t *Template) NextPageURL(p *parser.Page) string {
	if t.cfg.Pagination.NextSelector == "" {
		return ""
	}
	href, ok := p.Doc().Find(t.cfg.Pagination.NextSelector).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	abs, err := urlutil.Normalize(href, p.BaseURL())
	if err != nil {
		return ""
	}
	return abs
}
