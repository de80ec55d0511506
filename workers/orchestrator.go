package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lakeb2b/scraper/cache"
	"github.com/lakeb2b/scraper/config"
	"github.com/lakeb2b/scraper/engine"
	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/parser"
	"github.com/lakeb2b/scraper/ratelimit"
	"github.com/lakeb2b/scraper/store"
	"github.com/lakeb2b/scraper/templates"
	"github.com/lakeb2b/scraper/urlutil"
	"github.com/lakeb2b/scraper/webhook"
)

// WebhookSender forwards a finished job's records. The default is
// webhook.DeliverAsync; tests swap in a recorder.
type WebhookSender func(url, secret string, payload *webhook.Payload)

// Orchestrator drives one scrape job end to end: status transitions, domain
// mapping, per-data-type workers, cost and page accounting, webhook
// forwarding.
type Orchestrator struct {
	store     *store.Manager
	registry  *templates.Registry
	escalator *engine.Escalator
	tier1     engine.Fetcher
	limiter   *ratelimit.Limiter
	cache     *cache.Cache
	cfg       *config.Config
	log       *slog.Logger

	// WebhookSecret signs outgoing payloads when set.
	WebhookSecret string
	sendWebhook   WebhookSender
}

// NewOrchestrator wires the job runner.
func NewOrchestrator(st *store.Manager, registry *templates.Registry, escalator *engine.Escalator, tier1 engine.Fetcher, limiter *ratelimit.Limiter, pageCache *cache.Cache, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		store:       st,
		registry:    registry,
		escalator:   escalator,
		tier1:       tier1,
		limiter:     limiter,
		cache:       pageCache,
		cfg:         cfg,
		log:         slog.With("component", "orchestrator"),
		sendWebhook: webhook.DeliverAsync,
	}
}

// Run executes one job. The returned error reflects orchestration failures
// only; individual worker failures are recorded on the job and do not fail
// the run.
func (o *Orchestrator) Run(ctx context.Context, jobID uuid.UUID) error {
	job, err := o.store.Jobs().Get(ctx, jobID)
	if err != nil {
		return err
	}
	if _, err := o.store.Jobs().UpdateStatus(ctx, jobID, models.JobRunning, nil); err != nil {
		return err
	}

	start := time.Now()
	result, runErr := o.execute(ctx, job, start)
	if runErr != nil {
		msg := runErr.Error()
		if ctx.Err() != nil {
			msg = models.NewScrapeError(models.ErrCodeTimeout, "job deadline exceeded", ctx.Err()).Error()
		}
		_, ferr := o.store.Jobs().UpdateStatus(ctx, jobID, models.JobFailed, func(j *models.ScrapeJob) {
			j.ErrorMessage = msg
			j.DurationMs = time.Since(start).Milliseconds()
		})
		if ferr != nil {
			o.log.Error("failed to mark job failed", "job_id", jobID, "error", ferr)
		}
		return runErr
	}

	_, err = o.store.Jobs().UpdateStatus(ctx, jobID, models.JobCompleted, func(j *models.ScrapeJob) {
		j.StrategyUsed = result.StrategyUsed
		j.PagesScraped = result.PagesScraped
		j.CostUSD = result.CostUSD
		j.DurationMs = result.DurationMs
		if len(result.Errors) > 0 {
			j.ErrorMessage = strings.Join(result.Errors, "; ")
		}
	})
	if err != nil {
		return err
	}

	o.log.Info("job completed",
		"job_id", jobID,
		"domain", job.Domain,
		"pages", result.PagesScraped,
		"records", result.DataExtracted,
		"cost_usd", result.CostUSD,
		"duration_ms", result.DurationMs,
		"worker_errors", len(result.Errors),
	)

	o.forwardToWebhook(ctx, job)
	return nil
}

// execute runs the mapping and worker pipeline for an already-running job.
func (o *Orchestrator) execute(ctx context.Context, job *models.ScrapeJob, start time.Time) (*models.JobResult, error) {
	maxPages := job.MaxPages
	if maxPages <= 0 || maxPages > o.cfg.Jobs.MaxPages {
		maxPages = o.cfg.Jobs.MaxPages
	}

	costs := engine.NewCostTracker(o.cfg.Tiers.MaxCostPerJob)
	state := &jobState{}

	// Map the domain with the cheap tier and persist the classified URL
	// set for later correlation. Mapping fetches count against the same
	// cost budget and page totals as worker fetches.
	mapper := NewDomainMapper(job.Domain, &meteredFetcher{inner: o.tier1, costs: costs, state: state}, maxPages)
	classified := mapper.Map(ctx)
	if err := o.saveClassifications(ctx, job, classified); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	tpl, err := o.resolveTemplate(ctx, job, state, costs)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Escalator: o.escalator,
		Limiter:   o.limiter,
		Cache:     o.cache,
		Data:      o.store.Data(),
	}
	base := newBase(job.Domain, job.ID, tpl, deps, costs, state)

	byType := groupByType(classified)
	var errs []string
	extracted := len(classified)
	var blogArticles []string

	for _, dt := range job.DataTypes {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var w Worker
		var urls []string
		switch dt {
		case models.DataTypeBlogURL:
			blog := NewBlogExtractor(base)
			w, urls = blog, byType[models.DataTypeBlogURL]
			records, werr := o.runWorker(ctx, w, urls, &base)
			extracted += records
			if werr != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", dt, werr))
			}
			blogArticles = blog.ArticleURLs()
			continue
		case models.DataTypeArticle:
			w, urls = NewArticleParser(base), blogArticles
		case models.DataTypeContact:
			w, urls = NewContactFinder(base), byType[models.DataTypeContact]
		case models.DataTypeTechStack:
			w, urls = NewTechDetector(base), nil
		case models.DataTypeResource:
			w, urls = NewResourceFinder(base), byType[models.DataTypeResource]
		case models.DataTypePricing:
			w, urls = NewPricingFinder(base), byType[models.DataTypePricing]
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown data type", dt))
			continue
		}

		records, werr := o.runWorker(ctx, w, urls, &base)
		extracted += records
		if werr != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", dt, werr))
		}
	}

	return &models.JobResult{
		JobID:         job.ID,
		Domain:        job.Domain,
		StrategyUsed:  state.strategyUsed(),
		PagesScraped:  int(state.pages.Load()),
		DataExtracted: extracted,
		CostUSD:       costs.Total(),
		DurationMs:    time.Since(start).Milliseconds(),
		Errors:        errs,
	}, nil
}

// meteredFetcher charges every fetch to the job's cost tracker and page
// accounting before handing the result back.
type meteredFetcher struct {
	inner engine.Fetcher
	costs *engine.CostTracker
	state *jobState
}

func (f *meteredFetcher) Tier() engine.Tier { return f.inner.Tier() }

func (f *meteredFetcher) Fetch(ctx context.Context, rawURL string) *engine.FetchResult {
	r := f.inner.Fetch(ctx, rawURL)
	f.state.recordFetch(r)
	f.costs.Add(r.CostUSD)
	return r
}

// runWorker executes one worker, exports its records, and returns how many
// it produced. Worker failures never abort the job.
func (o *Orchestrator) runWorker(ctx context.Context, w Worker, urls []string, base *Base) (int, error) {
	records, err := w.Execute(ctx, urls)
	if len(records) > 0 {
		if serr := base.Export(ctx, records); serr != nil {
			if err == nil {
				err = serr
			}
			return 0, err
		}
	}
	return len(records), err
}

// resolveTemplate picks the template for the job, fetching the homepage
// when detection is needed. The homepage result lands in the page cache so
// downstream workers reuse it.
func (o *Orchestrator) resolveTemplate(ctx context.Context, job *models.ScrapeJob, state *jobState, costs *engine.CostTracker) (*templates.Template, error) {
	if job.TemplateID != "" && job.TemplateID != "auto" {
		if tpl, ok := o.registry.Get(job.TemplateID); ok {
			return tpl, nil
		}
		return nil, models.NewScrapeError(models.ErrCodeTemplateNotFound, "template "+job.TemplateID+" not registered", nil)
	}

	home := urlutil.EnsureScheme(job.Domain)
	r := o.escalator.Fetch(ctx, home)
	state.recordFetch(r)
	costs.Add(r.CostUSD)
	if r.OK() {
		o.cache.Set(cache.Key(home, "page"), r)
	}
	return o.registry.Resolve(job.TemplateID, r.HTML), nil
}

// saveClassifications persists one row per mapped URL with its classifier
// tag and confidence.
func (o *Orchestrator) saveClassifications(ctx context.Context, job *models.ScrapeJob, classified []parser.Classification) error {
	if len(classified) == 0 {
		return nil
	}
	records := make([]*models.ScrapedData, 0, len(classified))
	now := time.Now().UTC()
	for _, c := range classified {
		records = append(records, &models.ScrapedData{
			ID:       uuid.New(),
			JobID:    job.ID,
			Domain:   job.Domain,
			DataType: c.DataType,
			URL:      c.URL,
			Metadata: map[string]any{
				"source":     "mapper",
				"confidence": c.Confidence,
			},
			ScrapedAt: now,
		})
	}
	return o.store.Data().SaveBatch(ctx, records)
}

// forwardToWebhook sends the job's records when the domain is tracked with
// a webhook URL. Delivery failures never affect job status.
func (o *Orchestrator) forwardToWebhook(ctx context.Context, job *models.ScrapeJob) {
	tracked, err := o.store.Tracked().GetDomain(ctx, job.Domain)
	if err != nil {
		o.log.Warn("tracked domain lookup failed", "domain", job.Domain, "error", err)
		return
	}
	if tracked == nil || tracked.WebhookURL == "" {
		return
	}
	records, err := o.store.Data().ByJob(ctx, job.ID)
	if err != nil {
		o.log.Warn("webhook data load failed", "job_id", job.ID, "error", err)
		return
	}
	o.sendWebhook(tracked.WebhookURL, o.WebhookSecret, webhook.NewPayload("scheduled", job.ID.String(), records))
}

func groupByType(classified []parser.Classification) map[models.DataType][]string {
	byType := make(map[models.DataType][]string)
	for _, c := range classified {
		byType[c.DataType] = append(byType[c.DataType], c.URL)
	}
	return byType
}
