package workers

import (
	"context"
	"strings"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/parser"
)

// ContactFinder extracts people from team/contact pages, one record per
// person after cross-page deduplication by email then full name.
type ContactFinder struct {
	Base
}

// NewContactFinder builds the contact worker.
func NewContactFinder(b Base) *ContactFinder {
	b.log = b.log.With("worker", "contact_finder")
	return &ContactFinder{Base: b}
}

func (w *ContactFinder) DataType() models.DataType { return models.DataTypeContact }

func (w *ContactFinder) Execute(ctx context.Context, urls []string) ([]*models.ScrapedData, error) {
	seenEmails := map[string]bool{}
	seenNames := map[string]bool{}

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
			w.log.Warn("contact page parse failed", "url", u, "error", err)
			continue
		}

		for _, person := range parser.Contacts(p) {
			email := strings.ToLower(person.Email)
			name := strings.ToLower(person.FullName())
			if email != "" && seenEmails[email] {
				continue
			}
			if email == "" && name != "" && seenNames[name] {
				continue
			}
			if email != "" {
				seenEmails[email] = true
			}
			if name != "" {
				seenNames[name] = true
			}
			records = append(records, w.record(models.DataTypeContact, u, person.FullName(), "", person))
		}
	}
	return records, nil
}
