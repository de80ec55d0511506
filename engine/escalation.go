package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/lakeb2b/scraper/urlutil"
)

// DomainLearner persists per-domain fetch outcomes so later jobs start at
// the tier that last worked instead of re-climbing the ladder.
type DomainLearner interface {
	// LastSuccessfulStrategy returns the persisted strategy name for a
	// domain, or "" when the domain is unknown.
	LastSuccessfulStrategy(ctx context.Context, domain string) string

	// RecordSuccess stores the strategy that produced usable content.
	RecordSuccess(ctx context.Context, domain, strategy string, costUSD float64)

	// RecordBlock increments the domain's block counter.
	RecordBlock(ctx context.Context, domain string)
}

// Escalator walks the tier ladder for each fetch: start at the domain's
// learned tier (or the cheapest), escalate while the result looks blocked,
// and record what finally worked.
type Escalator struct {
	fetchers map[Tier]Fetcher
	cache    *StrategyCache
	learner  DomainLearner
	log      *slog.Logger
}

// NewEscalator builds an Escalator over the given fetchers. learner may be
// nil (outcomes are then only cached in memory).
func NewEscalator(fetchers []Fetcher, cache *StrategyCache, learner DomainLearner) *Escalator {
	byTier := make(map[Tier]Fetcher, len(fetchers))
	for _, f := range fetchers {
		byTier[f.Tier()] = f
	}
	return &Escalator{
		fetchers: byTier,
		cache:    cache,
		learner:  learner,
		log:      slog.Default().With("component", "escalator"),
	}
}

// InitialTier picks the starting tier for a domain: the cached tier, then
// the persisted last-successful strategy, then the cheapest tier.
func (e *Escalator) InitialTier(ctx context.Context, domain string) Tier {
	if t := e.cache.Get(domain); t != 0 {
		return t
	}
	if e.learner != nil {
		if s := e.learner.LastSuccessfulStrategy(ctx, domain); s != "" {
			t := TierForStrategy(s)
			e.cache.Set(domain, t)
			return t
		}
	}
	return TierBasicHTTP
}

// ShouldEscalate reports whether a fetch result warrants trying the next
// tier. Evaluate must have been applied to the result first.
func ShouldEscalate(r *FetchResult) bool {
	return r.Blocked || r.CaptchaDetected
}

// Fetch runs the escalation ladder for one URL and returns the final
// result. CostUSD on the result accumulates across every attempt, and
// Strategy reflects the tier that produced the returned content. The final
// result is returned even when every tier failed, so callers can inspect
// the block signals.
func (e *Escalator) Fetch(ctx context.Context, rawURL string) *FetchResult {
	domain := urlutil.Domain(rawURL)
	tier := e.InitialTier(ctx, domain)

	var totalCost float64
	attempts := 0
	for {
		fetcher, ok := e.fetchers[tier]
		if !ok {
			// Ladder gap (e.g. tier learned from stale data); fall back
			// to the cheapest configured fetcher.
			fetcher = e.fetchers[TierBasicHTTP]
		}

		start := time.Now()
		result := fetcher.Fetch(ctx, rawURL)
		Evaluate(result)
		attempts++
		totalCost += result.CostUSD

		if !ShouldEscalate(result) {
			result.CostUSD = totalCost
			result.Attempts = attempts
			e.recordSuccess(ctx, domain, result)
			return result
		}

		e.log.Info("fetch blocked",
			"url", rawURL,
			"tier", tier.Strategy(),
			"status", result.StatusCode,
			"captcha", result.CaptchaDetected,
			"duration", time.Since(start))
		e.recordBlock(ctx, domain)

		next, ok := tier.Next()
		if !ok || ctx.Err() != nil {
			result.CostUSD = totalCost
			result.Attempts = attempts
			return result
		}
		tier = next
	}
}

func (e *Escalator) recordSuccess(ctx context.Context, domain string, r *FetchResult) {
	e.cache.Set(domain, r.Tier)
	if e.learner != nil {
		e.learner.RecordSuccess(ctx, domain, r.Strategy, r.CostUSD)
	}
}

func (e *Escalator) recordBlock(ctx context.Context, domain string) {
	e.cache.Delete(domain)
	if e.learner != nil {
		e.learner.RecordBlock(ctx, domain)
	}
}
