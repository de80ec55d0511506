package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration, loaded from environment
// variables with defaults suitable for local development.
type Config struct {
	Store     StoreConfig
	Browser   BrowserConfig
	Fetch     FetchConfig
	Tiers     TierConfig
	Jobs      JobConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
	Discovery DiscoveryConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// StoreConfig controls the embedded Badger store.
type StoreConfig struct {
	Dir      string // on-disk location, default "./data"
	InMemory bool   // run without persistence (tests, CI)
}

// BrowserConfig controls the headless browser used by tiers 2 and 3.
type BrowserConfig struct {
	Headless   bool
	NoSandbox  bool   // disable Chrome's sandbox (needed in Docker)
	BrowserBin string // override the Chromium binary path

	// ProxyURL is the residential proxy endpoint for tier 3. When empty,
	// tier 3 degrades to a plain headless fetch but keeps the tier-3
	// strategy label and cost.
	ProxyURL string
}

// FetchConfig controls per-fetch behavior shared by all tiers.
type FetchConfig struct {
	Timeout      time.Duration // per-fetch deadline
	MaxBodyBytes int64         // response body cap for the HTTP tier
}

// TierConfig carries the fixed per-fetch cost of each tier in USD.
type TierConfig struct {
	BasicHTTPCost     float64
	HeadlessCost      float64
	HeadlessProxyCost float64
	MaxCostPerJob     float64
}

// JobConfig controls the worker pool and per-job limits.
type JobConfig struct {
	MaxConcurrent int           // jobs running at once in this process
	Timeout       time.Duration // terminal per-job deadline
	MaxPages      int           // hard cap on pages per job
}

// RateLimitConfig controls per-domain request spacing.
type RateLimitConfig struct {
	// DefaultDelayMs is the minimum interval between requests to one
	// domain; templates may override it.
	DefaultDelayMs int
}

// SchedulerConfig carries the cron expressions for the periodic sweeps.
type SchedulerConfig struct {
	DomainsCron  string
	SearchesCron string
}

// DiscoveryConfig controls the search fan-out pipeline.
type DiscoveryConfig struct {
	SkipRecentDays     int // skip domains scraped within this window
	MaxDomainsPerQuery int // cap on scrape jobs spawned per search
}

// CacheConfig controls the fetch-result cache.
type CacheConfig struct {
	MaxEntries int
}

// WebhookConfig controls outgoing result delivery.
type WebhookConfig struct {
	Secret string // HMAC signing key; unsigned when empty
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // "json" or "text"
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Store: StoreConfig{
			Dir:      envOr("LAKE_DATA_DIR", "./data"),
			InMemory: envBoolOr("LAKE_DATA_IN_MEMORY", false),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("LAKE_HEADLESS", true),
			NoSandbox:  envBoolOr("LAKE_NO_SANDBOX", false),
			BrowserBin: os.Getenv("LAKE_BROWSER_BIN"),
			ProxyURL:   firstEnv("LAKE_PROXY_URL", "LAKE_BRIGHTDATA_PROXY_URL"),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("LAKE_FETCH_TIMEOUT", 30*time.Second),
			MaxBodyBytes: envInt64Or("LAKE_MAX_BODY_BYTES", 10<<20),
		},
		Tiers: TierConfig{
			BasicHTTPCost:     envFloatOr("LAKE_TIER1_COST", 0.0001),
			HeadlessCost:      envFloatOr("LAKE_TIER2_COST", 0.002),
			HeadlessProxyCost: envFloatOr("LAKE_TIER3_COST", 0.004),
			MaxCostPerJob:     envFloatOr("LAKE_MAX_COST_PER_JOB", 1.0),
		},
		Jobs: JobConfig{
			MaxConcurrent: envIntOr("LAKE_MAX_CONCURRENT_JOBS", 10),
			Timeout:       envDurationOr("LAKE_JOB_TIMEOUT", 300*time.Second),
			MaxPages:      envIntOr("LAKE_MAX_PAGES_PER_JOB", 500),
		},
		RateLimit: RateLimitConfig{
			DefaultDelayMs: envIntOr("LAKE_RATE_LIMIT_MS", 1000),
		},
		Scheduler: SchedulerConfig{
			DomainsCron:  envOr("LAKE_DOMAINS_CRON", "0 * * * *"),
			SearchesCron: envOr("LAKE_SEARCHES_CRON", "*/15 * * * *"),
		},
		Discovery: DiscoveryConfig{
			SkipRecentDays:     envIntOr("LAKE_DISCOVERY_SKIP_DAYS", 7),
			MaxDomainsPerQuery: envIntOr("LAKE_DISCOVERY_MAX_DOMAINS", 20),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("LAKE_CACHE_MAX_ENTRIES", 1000),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("LAKE_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("LAKE_LOG_LEVEL", "info"),
			Format: envOr("LAKE_LOG_FORMAT", "json"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
