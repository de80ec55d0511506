package workers

import (
	"context"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/parser"
)

// PricingFinder extracts plans from pricing pages, one record per plan.
type PricingFinder struct {
	Base
}

// NewPricingFinder builds the pricing worker.
func NewPricingFinder(b Base) *PricingFinder {
	b.log = b.log.With("worker", "pricing_finder")
	return &PricingFinder{Base: b}
}

func (w *PricingFinder) DataType() models.DataType { return models.DataTypePricing }

func (w *PricingFinder) Execute(ctx context.Context, urls []string) ([]*models.ScrapedData, error) {
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
			w.log.Warn("pricing page parse failed", "url", u, "error", err)
			continue
		}

		for _, plan := range parser.PricingPlans(p) {
			records = append(records, w.record(models.DataTypePricing, u, plan.PlanName, "", plan))
		}
	}
	return records, nil
}
