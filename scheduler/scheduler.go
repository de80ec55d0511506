// Package scheduler runs the periodic sweeps: due tracked domains become
// scrape jobs, due tracked searches become discovery jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lakeb2b/scraper/config"
	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/queue"
	"github.com/lakeb2b/scraper/store"
)

// Scheduler ticks on two cron entries and enqueues due work. Individual
// failures are logged and never block the rest of a sweep.
type Scheduler struct {
	store *store.Manager
	queue queue.Queue
	cfg   config.SchedulerConfig
	cron  *cron.Cron
	log   *slog.Logger
}

// New builds the scheduler. Empty cron expressions fall back to the hourly
// domain sweep and the 15-minute search sweep.
func New(st *store.Manager, q queue.Queue, cfg config.SchedulerConfig) *Scheduler {
	if cfg.DomainsCron == "" {
		cfg.DomainsCron = "0 * * * *"
	}
	if cfg.SearchesCron == "" {
		cfg.SearchesCron = "*/15 * * * *"
	}
	return &Scheduler{
		store: st,
		queue: q,
		cfg:   cfg,
		cron:  cron.New(),
		log:   slog.With("component", "scheduler"),
	}
}

// Start registers the sweeps and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.DomainsCron, func() {
		s.SweepDomains(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduler: domains cron %q: %w", s.cfg.DomainsCron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.SearchesCron, func() {
		s.SweepSearches(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduler: searches cron %q: %w", s.cfg.SearchesCron, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", "domains_cron", s.cfg.DomainsCron, "searches_cron", s.cfg.SearchesCron)
	return nil
}

// Stop halts the cron loop, waiting for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// SweepDomains enqueues a scrape job for every due tracked domain and
// advances its schedule.
func (s *Scheduler) SweepDomains(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.store.Tracked().DueDomains(ctx, now)
	if err != nil {
		s.log.Error("due domain query failed", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	s.log.Info("domain sweep", "due", len(due))

	for _, td := range due {
		if err := s.enqueueDomain(ctx, td, now); err != nil {
			s.log.Error("tracked domain scheduling failed", "domain", td.Domain, "error", err)
		}
	}
}

func (s *Scheduler) enqueueDomain(ctx context.Context, td *models.TrackedDomain, now time.Time) error {
	in := &models.ScrapeJobInput{
		Domain:     td.Domain,
		TemplateID: td.TemplateID,
		MaxPages:   td.MaxPages,
		DataTypes:  td.DataTypes,
	}
	in.Defaults()
	job := models.NewScrapeJob(in)

	if err := s.store.Jobs().Create(ctx, job); err != nil {
		return err
	}
	if err := s.queue.EnqueueScrape(ctx, queue.ScrapeTask{JobID: job.ID}); err != nil {
		return err
	}
	return s.store.Tracked().MarkDomainScraped(ctx, td.Domain, now)
}

// SweepSearches enqueues a discovery job for every due tracked search and
// advances its schedule.
func (s *Scheduler) SweepSearches(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.store.Tracked().DueSearches(ctx, now)
	if err != nil {
		s.log.Error("due search query failed", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	s.log.Info("search sweep", "due", len(due))

	for _, ts := range due {
		if err := s.enqueueSearch(ctx, ts, now); err != nil {
			s.log.Error("tracked search scheduling failed", "query", ts.Query, "error", err)
		}
	}
}

func (s *Scheduler) enqueueSearch(ctx context.Context, ts *models.TrackedSearch, now time.Time) error {
	in := &models.DiscoveryJobInput{
		Query:             ts.Query,
		SearchMode:        ts.SearchMode,
		SearchPages:       ts.SearchPages,
		ResultsPerPage:    ts.ResultsPerPage,
		DataTypes:         ts.DataTypes,
		TemplateID:        ts.TemplateID,
		MaxPagesPerDomain: ts.MaxPagesPerDomain,
	}
	in.Defaults()
	job := models.NewDiscoveryJob(in)

	if err := s.store.Discovery().Create(ctx, job); err != nil {
		return err
	}
	if err := s.queue.EnqueueDiscovery(ctx, queue.DiscoveryTask{DiscoveryID: job.ID}); err != nil {
		return err
	}
	return s.store.Tracked().MarkSearchRun(ctx, ts.Query, now)
}
