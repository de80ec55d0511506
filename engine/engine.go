// Package engine implements the three-tier adaptive fetcher: plain HTTP
// with a Chrome TLS fingerprint, a headless browser, and a headless browser
// behind a residential proxy. Tiers escalate on block or captcha signals and
// the winning strategy is remembered per domain.
package engine

import (
	"context"
	"time"
)

// Tier identifies one fetch strategy, ordered cheapest first.
type Tier int

const (
	TierBasicHTTP Tier = iota + 1
	TierHeadless
	TierHeadlessProxy
)

// Strategy names as persisted on jobs and domain metadata.
const (
	StrategyBasicHTTP     = "basic_http"
	StrategyHeadless      = "headless_browser"
	StrategyHeadlessProxy = "headless_proxy"
)

// Strategy returns the persisted name of the tier.
func (t Tier) Strategy() string {
	switch t {
	case TierBasicHTTP:
		return StrategyBasicHTTP
	case TierHeadless:
		return StrategyHeadless
	case TierHeadlessProxy:
		return StrategyHeadlessProxy
	default:
		return StrategyBasicHTTP
	}
}

// TierForStrategy maps a persisted strategy name back to its tier.
// Unknown names map to the cheapest tier.
func TierForStrategy(s string) Tier {
	switch s {
	case StrategyHeadless:
		return TierHeadless
	case StrategyHeadlessProxy:
		return TierHeadlessProxy
	default:
		return TierBasicHTTP
	}
}

// Next returns the tier above t, or false when t is already the top.
func (t Tier) Next() (Tier, bool) {
	if t >= TierHeadlessProxy {
		return t, false
	}
	return t + 1, true
}

// FetchResult is the outcome of one fetch attempt. Fetchers never return a
// Go error for page-level failures: network errors land here with a zero
// status code so block detection and escalation can reason about them.
type FetchResult struct {
	URL             string
	FinalURL        string
	StatusCode      int
	HTML            string
	Title           string
	Headers         map[string]string
	Tier            Tier
	Strategy        string
	CostUSD         float64
	Duration        time.Duration
	Attempts        int
	Blocked         bool
	CaptchaDetected bool
	Err             error
}

// OK reports whether the result is usable page content.
func (r *FetchResult) OK() bool {
	return r.Err == nil && !r.Blocked && !r.CaptchaDetected &&
		r.StatusCode >= 200 && r.StatusCode < 400
}

// Fetcher is a single-tier page fetcher.
type Fetcher interface {
	Tier() Tier
	Fetch(ctx context.Context, rawURL string) *FetchResult
}
