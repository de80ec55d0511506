package workers

import (
	"context"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/parser"
)

// ResourceFinder extracts downloadable/gated content assets, deduplicated
// by URL across every input page.
type ResourceFinder struct {
	Base
}

// NewResourceFinder builds the resource worker.
func NewResourceFinder(b Base) *ResourceFinder {
	b.log = b.log.With("worker", "resource_finder")
	return &ResourceFinder{Base: b}
}

func (w *ResourceFinder) DataType() models.DataType { return models.DataTypeResource }

func (w *ResourceFinder) Execute(ctx context.Context, urls []string) ([]*models.ScrapedData, error) {
	seen := map[string]bool{}

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
			w.log.Warn("resource page parse failed", "url", u, "error", err)
			continue
		}

		for _, res := range parser.Resources(p) {
			if seen[res.URL] {
				continue
			}
			seen[res.URL] = true
			records = append(records, w.record(models.DataTypeResource, res.URL, res.Title, "", res.ResourceMetadata))
		}
	}
	return records, nil
}
