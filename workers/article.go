package workers

import (
	"context"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/parser"
)

// ArticleParser fetches article URLs (usually the BlogExtractor's yield) and
// emits one article record per page, with the main content converted to
// Markdown.
type ArticleParser struct {
	Base
}

// NewArticleParser builds the article worker.
func NewArticleParser(b Base) *ArticleParser {
	b.log = b.log.With("worker", "article_parser")
	return &ArticleParser{Base: b}
}

func (w *ArticleParser) DataType() models.DataType { return models.DataTypeArticle }

func (w *ArticleParser) Execute(ctx context.Context, urls []string) ([]*models.ScrapedData, error) {
	var records []*models.ScrapedData
	for _, u := range urls {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}
		r := w.FetchPage(ctx, u)
		if r == nil || !r.OK() {
			continue
		}
		p, err := parser.Parse(r.HTML, u)
		if err != nil {
			w.log.Warn("article parse failed", "url", u, "error", err)
			continue
		}

		art := w.tpl.ExtractArticle(p)
		content := parser.ExtractArticle(r.HTML, u)

		meta := models.ArticleMetadata{
			Author:          art.Author,
			Categories:      p.Categories(),
			WordCount:       art.WordCount,
			Excerpt:         art.Excerpt,
			ContentMarkdown: content.Markdown,
		}
		if meta.Author == "" {
			meta.Author = p.Meta("author")
		}
		if meta.Excerpt == "" {
			meta.Excerpt = p.Meta("description")
		}

		title := art.Title
		if title == "" {
			title = p.Title()
		}
		records = append(records, w.record(models.DataTypeArticle, u, title, art.Date, meta))
	}
	return records, nil
}
