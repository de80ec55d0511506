// Package ratelimit spaces requests per domain so one job never hammers a
// single site, regardless of how many pages it fetches.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lakeb2b/scraper/urlutil"
)

// Limiter enforces a minimum interval between requests to each domain.
// Domains are tracked independently; a template may tighten the interval
// for its own domain. Safe for concurrent use.
type Limiter struct {
	mu              sync.Mutex
	limiters        map[string]*rate.Limiter
	defaultInterval time.Duration
}

// New creates a Limiter with the given default per-domain interval.
func New(defaultInterval time.Duration) *Limiter {
	if defaultInterval <= 0 {
		defaultInterval = time.Second
	}
	return &Limiter{
		limiters:        make(map[string]*rate.Limiter),
		defaultInterval: defaultInterval,
	}
}

// Wait blocks until the domain of rawURL may be hit again, or the context
// is done.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	return l.limiterFor(urlutil.Domain(rawURL), 0).Wait(ctx)
}

// WaitDomain is Wait for an already-extracted domain with an optional
// interval override (templates with slower crawl budgets pass theirs).
func (l *Limiter) WaitDomain(ctx context.Context, domain string, interval time.Duration) error {
	return l.limiterFor(domain, interval).Wait(ctx)
}

func (l *Limiter) limiterFor(domain string, interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		interval = l.defaultInterval
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[domain]
	if !ok {
		lim = rate.NewLimiter(rate.Every(interval), 1)
		l.limiters[domain] = lim
	} else if lim.Limit() != rate.Every(interval) {
		lim.SetLimit(rate.Every(interval))
	}
	return lim
}

// Reset drops the limiter state for a domain (tests, tracked-domain
// removal).
func (l *Limiter) Reset(domain string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, domain)
}
