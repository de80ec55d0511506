package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/lakeb2b/scraper/cache"
	"github.com/lakeb2b/scraper/config"
	"github.com/lakeb2b/scraper/discovery"
	"github.com/lakeb2b/scraper/engine"
	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/queue"
	"github.com/lakeb2b/scraper/ratelimit"
	"github.com/lakeb2b/scraper/scheduler"
	"github.com/lakeb2b/scraper/store"
	"github.com/lakeb2b/scraper/templates"
	"github.com/lakeb2b/scraper/workers"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("lakescraper starting",
		"data_dir", cfg.Store.Dir,
		"max_concurrent_jobs", cfg.Jobs.MaxConcurrent,
		"proxy_configured", cfg.Browser.ProxyURL != "",
	)

	// ── 3. Open the store ───────────────────────────────────────────
	st, err := store.Open(cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// ── 4. Assemble the fetch ladder ────────────────────────────────
	tier1 := engine.NewHTTPFetcher(cfg.Fetch, cfg.Tiers.BasicHTTPCost)
	tier2 := engine.NewBrowserFetcher(cfg.Browser, cfg.Fetch, cfg.Tiers.HeadlessCost)
	tier3 := engine.NewProxyFetcher(cfg.Browser, cfg.Fetch, cfg.Tiers.HeadlessProxyCost)
	defer tier2.Close()
	defer tier3.Close()

	strategies := engine.NewStrategyCache(24 * time.Hour)
	defer strategies.Stop()
	escalator := engine.NewEscalator([]engine.Fetcher{tier1, tier2, tier3}, strategies, st.Domains())

	// ── 5. Shared scraping infrastructure ───────────────────────────
	limiter := ratelimit.New(time.Duration(cfg.RateLimit.DefaultDelayMs) * time.Millisecond)
	pageCache := cache.New(cfg.Cache.MaxEntries)
	registry := templates.NewRegistry()

	orchestrator := workers.NewOrchestrator(st, registry, escalator, tier1, limiter, pageCache, cfg)
	orchestrator.WebhookSecret = cfg.Webhook.Secret

	// The external search provider is wired by deployment; without one,
	// discovery jobs fail fast instead of hanging.
	searchFn := discovery.SearchFunc(func(ctx context.Context, query string, page, perPage int, mode string) ([]models.SearchResult, error) {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "no search provider configured", nil)
	})

	// ── 6. Worker pool ──────────────────────────────────────────────
	// The discovery processor needs the pool as its queue, and the pool
	// needs a discovery handler; the closure resolves the cycle.
	var processor *discovery.Processor
	pool := queue.NewPool(queue.Handlers{
		Scrape: orchestrator.Run,
		Discovery: func(ctx context.Context, discoveryID uuid.UUID) error {
			return processor.Run(ctx, discoveryID)
		},
	}, cfg.Jobs.MaxConcurrent, cfg.Jobs.Timeout)
	processor = discovery.NewProcessor(st, pool, searchFn, cfg.Discovery.SkipRecentDays, cfg.Discovery.MaxDomainsPerQuery)
	pool.Start()
	defer pool.Stop()

	// ── 7. Scheduler ────────────────────────────────────────────────
	sched := scheduler.New(st, pool, cfg.Scheduler)
	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())
	slog.Info("lakescraper stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
