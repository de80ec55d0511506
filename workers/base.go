package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lakeb2b/scraper/cache"
	"github.com/lakeb2b/scraper/engine"
	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/ratelimit"
	"github.com/lakeb2b/scraper/store"
	"github.com/lakeb2b/scraper/templates"
	"github.com/lakeb2b/scraper/urlutil"
)

// pageCacheAge is how long a fetched page may be reused within a process.
// It keeps the homepage fetched during mapping from being refetched by the
// tech detector moments later.
const pageCacheAge = 15 * time.Minute

// Deps are the shared collaborators every worker uses.
type Deps struct {
	Escalator *engine.Escalator
	Limiter   *ratelimit.Limiter
	Cache     *cache.Cache
	Data      *store.DataStore
}

// Worker extracts records of one data type from a set of URLs.
type Worker interface {
	DataType() models.DataType
	Execute(ctx context.Context, urls []string) ([]*models.ScrapedData, error)
}

// jobState is the per-job accounting shared by all of a job's workers.
type jobState struct {
	pages atomic.Int64

	mu           sync.Mutex
	lastStrategy string
}

func (s *jobState) recordFetch(r *engine.FetchResult) {
	s.pages.Add(1)
	if r.OK() {
		s.mu.Lock()
		s.lastStrategy = r.Strategy
		s.mu.Unlock()
	}
}

func (s *jobState) strategyUsed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStrategy
}

// Base carries the fields and operations common to every worker.
type Base struct {
	domain string
	jobID  uuid.UUID
	log    *slog.Logger
	tpl    *templates.Template
	deps   Deps
	costs  *engine.CostTracker
	state  *jobState
}

func newBase(domain string, jobID uuid.UUID, tpl *templates.Template, deps Deps, costs *engine.CostTracker, state *jobState) Base {
	return Base{
		domain: domain,
		jobID:  jobID,
		log:    slog.With("domain", domain, "job_id", jobID),
		tpl:    tpl,
		deps:   deps,
		costs:  costs,
		state:  state,
	}
}

// FetchPage fetches one URL through the tier escalation chain, honoring the
// per-domain rate limit and the process-level page cache. Returns nil when
// the job's cost budget is exhausted; callers skip the URL.
func (b *Base) FetchPage(ctx context.Context, rawURL string) *engine.FetchResult {
	key := cache.Key(rawURL, "page")
	if r, ok := b.deps.Cache.Get(key, pageCacheAge); ok {
		return r
	}

	if b.costs != nil && b.costs.Exceeded() {
		b.log.Warn("cost budget exhausted, skipping fetch", "url", rawURL)
		return nil
	}

	if err := b.deps.Limiter.WaitDomain(ctx, urlutil.Domain(rawURL), b.tpl.RateLimit()); err != nil {
		return nil
	}

	r := b.deps.Escalator.Fetch(ctx, rawURL)
	b.state.recordFetch(r)
	if b.costs != nil {
		b.costs.Add(r.CostUSD)
	}
	b.deps.Cache.Set(key, r)
	return r
}

// Export batch-inserts the worker's records.
func (b *Base) Export(ctx context.Context, records []*models.ScrapedData) error {
	if len(records) == 0 {
		return nil
	}
	return b.deps.Data.SaveBatch(ctx, records)
}

// record builds a ScrapedData row for this job. meta is one of the typed
// metadata structs, flattened to the attribute bag via JSON.
func (b *Base) record(dataType models.DataType, url, title, published string, meta any) *models.ScrapedData {
	return &models.ScrapedData{
		ID:            uuid.New(),
		JobID:         b.jobID,
		Domain:        b.domain,
		DataType:      dataType,
		URL:           url,
		Title:         title,
		PublishedDate: published,
		Metadata:      toMap(meta),
		ScrapedAt:     time.Now().UTC(),
	}
}

func toMap(v any) map[string]any {
	if v == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
