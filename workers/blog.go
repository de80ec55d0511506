package workers

import (
	"context"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/parser"
	"github.com/lakeb2b/scraper/urlutil"
)

// BlogExtractor visits blog landing pages, collects article links (following
// pagination within the template's page cap), and emits one blog_url record
// per landing page. The article URLs it finds feed the ArticleParser.
type BlogExtractor struct {
	Base
	articleURLs []string
}

// NewBlogExtractor builds the blog landing worker.
func NewBlogExtractor(b Base) *BlogExtractor {
	b.log = b.log.With("worker", "blog_extractor")
	return &BlogExtractor{Base: b}
}

func (w *BlogExtractor) DataType() models.DataType { return models.DataTypeBlogURL }

// ArticleURLs returns the deduplicated article links found across every
// landing page, for the downstream article worker.
func (w *BlogExtractor) ArticleURLs() []string {
	return urlutil.Dedupe(w.articleURLs)
}

func (w *BlogExtractor) Execute(ctx context.Context, urls []string) ([]*models.ScrapedData, error) {
	var records []*models.ScrapedData
	for _, landing := range urls {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}
		articles, title := w.collectArticles(ctx, landing)
		if len(articles) == 0 {
			continue
		}
		w.articleURLs = append(w.articleURLs, articles...)
		records = append(records, w.record(models.DataTypeBlogURL, landing, title, "", models.BlogURLMetadata{
			BlogLandingURL: landing,
			ArticleURLs:    articles,
			TotalArticles:  len(articles),
		}))
	}
	return records, nil
}

// collectArticles walks a landing page and its pagination chain, returning
// the article URLs and the landing page title.
func (w *BlogExtractor) collectArticles(ctx context.Context, landing string) ([]string, string) {
	maxPages := w.tpl.Config().Pagination.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	var articles []string
	var title string
	pageURL := landing
	seen := map[string]bool{landing: true}

	for page := 0; page < maxPages && pageURL != ""; page++ {
		r := w.FetchPage(ctx, pageURL)
		if r == nil || !r.OK() {
			break
		}
		p, err := parser.Parse(r.HTML, pageURL)
		if err != nil {
			w.log.Warn("landing page parse failed", "url", pageURL, "error", err)
			break
		}
		if title == "" {
			title = p.Title()
		}
		articles = append(articles, w.tpl.BlogURLs(p)...)

		next := w.tpl.NextPageURL(p)
		if next == "" || seen[next] {
			break
		}
		seen[next] = true
		pageURL = next
	}
	return urlutil.Dedupe(articles), title
}
