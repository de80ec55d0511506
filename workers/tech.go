package workers

import (
	"context"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/parser"
	"github.com/lakeb2b/scraper/urlutil"
)

// TechDetector fingerprints the homepage and emits a single tech_stack
// record. Its input URL list is ignored; the homepage is always the target.
type TechDetector struct {
	Base
}

// NewTechDetector builds the tech-stack worker.
func NewTechDetector(b Base) *TechDetector {
	b.log = b.log.With("worker", "tech_detector")
	return &TechDetector{Base: b}
}

func (w *TechDetector) DataType() models.DataType { return models.DataTypeTechStack }

func (w *TechDetector) Execute(ctx context.Context, _ []string) ([]*models.ScrapedData, error) {
	home := urlutil.EnsureScheme(w.domain)
	r := w.FetchPage(ctx, home)
	if r == nil || !r.OK() {
		return nil, nil
	}

	tech := parser.DetectTech(r.HTML, r.Headers)
	title := r.Title
	if title == "" {
		if p, err := parser.Parse(r.HTML, home); err == nil {
			title = p.Title()
		}
	}
	return []*models.ScrapedData{
		w.record(models.DataTypeTechStack, home, title, "", tech),
	}, nil
}
