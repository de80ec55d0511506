// Package discovery fans a search query out into per-domain scrape jobs.
// The search provider itself is an external collaborator; this package only
// consumes result lists.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/queue"
	"github.com/lakeb2b/scraper/retry"
	"github.com/lakeb2b/scraper/store"
	"github.com/lakeb2b/scraper/urlutil"
)

// SearchFunc is the opaque external search provider: one page of results
// for a query.
type SearchFunc func(ctx context.Context, query string, page, perPage int, mode string) ([]models.SearchResult, error)

// ExtractUniqueDomains collapses search results to one entry per
// registrable domain, keeping the highest-scored hit, and drops domains in
// the skip set. Result order follows first appearance.
func ExtractUniqueDomains(results []models.SearchResult, skip map[string]bool) []models.SearchResult {
	best := map[string]int{}
	var out []models.SearchResult
	for _, r := range results {
		raw := r.Domain
		if raw == "" {
			raw = r.URL
		}
		// Dedupe on the registrable domain so blog.example.com and
		// example.com collapse to one entry.
		domain := urlutil.RegistrableDomain(raw)
		if domain == "" || skip[domain] {
			continue
		}
		r.Domain = domain
		if i, ok := best[domain]; ok {
			if r.Score > out[i].Score {
				out[i] = r
			}
			continue
		}
		best[domain] = len(out)
		out = append(out, r)
	}
	return out
}

// Processor runs discovery jobs: search, dedupe, skip recently scraped
// domains, spawn a scrape job per survivor.
type Processor struct {
	store  *store.Manager
	queue  queue.Queue
	search SearchFunc
	log    *slog.Logger

	// SkipRecentWindow excludes domains scraped within this window.
	SkipRecentWindow time.Duration
	// MaxDomainsPerQuery caps the scrape jobs spawned by one discovery run.
	MaxDomainsPerQuery int
	// Retry governs per-page retries against the search provider.
	Retry retry.Policy
}

// NewProcessor wires the discovery pipeline.
func NewProcessor(st *store.Manager, q queue.Queue, search SearchFunc, skipRecentDays, maxDomains int) *Processor {
	if skipRecentDays <= 0 {
		skipRecentDays = 7
	}
	if maxDomains <= 0 {
		maxDomains = 20
	}
	return &Processor{
		store:              st,
		queue:              q,
		search:             search,
		log:                slog.With("component", "discovery"),
		SkipRecentWindow:   time.Duration(skipRecentDays) * 24 * time.Hour,
		MaxDomainsPerQuery: maxDomains,
		Retry:              retry.DefaultPolicy(),
	}
}

// Run executes one discovery job end to end. It returns an error only for
// orchestration failures; those also mark the job failed.
func (p *Processor) Run(ctx context.Context, discoveryID uuid.UUID) error {
	job, err := p.store.Discovery().Get(ctx, discoveryID)
	if err != nil {
		return err
	}

	if err := p.run(ctx, job); err != nil {
		job.Status = models.DiscoveryFailed
		job.ErrorMessage = err.Error()
		now := time.Now().UTC()
		job.CompletedAt = &now
		if uerr := p.store.Discovery().Update(ctx, job); uerr != nil {
			p.log.Error("failed to mark discovery failed", "discovery_id", discoveryID, "error", uerr)
		}
		return err
	}
	return nil
}

func (p *Processor) run(ctx context.Context, job *models.DiscoveryJob) error {
	log := p.log.With("discovery_id", job.ID, "query", job.Query)
	log.Info("discovery started", "pages", job.SearchPages, "per_page", job.ResultsPerPage)

	results, err := p.searchAll(ctx, job)
	if err != nil {
		return err
	}
	job.SearchResults = results

	unique := ExtractUniqueDomains(results, nil)
	if len(unique) > p.MaxDomainsPerQuery {
		unique = unique[:p.MaxDomainsPerQuery]
	}

	cutoff := time.Now().Add(-p.SkipRecentWindow)
	var spawned, skipped int

	job.Status = models.DiscoveryScraping
	if err := p.store.Discovery().Update(ctx, job); err != nil {
		return err
	}

	for _, r := range unique {
		recent, err := p.store.Domains().ScrapedSince(ctx, r.Domain, cutoff)
		if err != nil {
			return fmt.Errorf("discovery: recency check for %s: %w", r.Domain, err)
		}
		if recent {
			skipped++
			if err := p.saveDomain(ctx, job, r, "skipped", "recently scraped", nil); err != nil {
				return err
			}
			continue
		}

		scrape := models.NewScrapeJob(&models.ScrapeJobInput{
			Domain:     r.Domain,
			TemplateID: job.TemplateID,
			MaxPages:   job.MaxPagesPerDomain,
			DataTypes:  job.DataTypes,
		})
		if err := p.store.Jobs().Create(ctx, scrape); err != nil {
			return fmt.Errorf("discovery: create scrape job for %s: %w", r.Domain, err)
		}
		if err := p.queue.EnqueueScrape(ctx, queue.ScrapeTask{JobID: scrape.ID}); err != nil {
			return fmt.Errorf("discovery: enqueue %s: %w", r.Domain, err)
		}
		if err := p.saveDomain(ctx, job, r, "queued", "", &scrape.ID); err != nil {
			return err
		}
		spawned++
	}

	job.DomainsFound = spawned
	job.DomainsSkipped = skipped
	if spawned == 0 {
		// Nothing eligible: the discovery run is already complete.
		job.Status = models.DiscoveryCompleted
		now := time.Now().UTC()
		job.CompletedAt = &now
	}
	if err := p.store.Discovery().Update(ctx, job); err != nil {
		return err
	}

	log.Info("discovery finished", "spawned", spawned, "skipped", skipped)
	return nil
}

// searchAll pages through the provider, tolerating per-page failures as
// long as at least one page succeeds.
func (p *Processor) searchAll(ctx context.Context, job *models.DiscoveryJob) ([]models.SearchResult, error) {
	var results []models.SearchResult
	var lastErr error
	pagesOK := 0
	for page := 1; page <= job.SearchPages; page++ {
		var hits []models.SearchResult
		err := p.Retry.Do(ctx, func() error {
			var serr error
			hits, serr = p.search(ctx, job.Query, page, job.ResultsPerPage, job.SearchMode)
			return serr
		})
		if err != nil {
			lastErr = err
			p.log.Warn("search page failed", "query", job.Query, "page", page, "error", err)
			continue
		}
		pagesOK++
		results = append(results, hits...)
	}
	if pagesOK == 0 && lastErr != nil {
		return nil, fmt.Errorf("discovery: search failed: %w", lastErr)
	}
	return results, nil
}

func (p *Processor) saveDomain(ctx context.Context, job *models.DiscoveryJob, r models.SearchResult, status, skipReason string, scrapeJobID *uuid.UUID) error {
	return p.store.Discovery().SaveDomain(ctx, &models.DiscoveryJobDomain{
		DiscoveryID:   job.ID,
		Domain:        r.Domain,
		SourceURL:     r.URL,
		SourceTitle:   r.Title,
		SourceSnippet: r.Snippet,
		SourceScore:   r.Score,
		Status:        status,
		SkipReason:    skipReason,
		ScrapeJobID:   scrapeJobID,
		CreatedAt:     time.Now().UTC(),
	})
}
