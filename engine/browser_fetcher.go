package engine

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/lakeb2b/scraper/config"
)

// BrowserFetcher drives a headless Chromium via rod. One shared browser is
// launched lazily on first use; every fetch gets a fresh tab that is closed
// afterwards. It serves tier 2, and tier 3 when constructed with a proxy.
type BrowserFetcher struct {
	browserCfg config.BrowserConfig
	timeout    time.Duration
	cost       float64
	tier       Tier
	proxyURL   string

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserFetcher creates the tier-2 headless fetcher.
func NewBrowserFetcher(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig, costUSD float64) *BrowserFetcher {
	return &BrowserFetcher{
		browserCfg: browserCfg,
		timeout:    fetchCfg.Timeout,
		cost:       costUSD,
		tier:       TierHeadless,
	}
}

// NewProxyFetcher creates the tier-3 fetcher: a headless browser launched
// behind the configured proxy. When no proxy is configured, the fetch runs
// like tier 2 but keeps the tier-3 strategy label and cost so domain
// metadata and job accounting reflect the intended strategy.
func NewProxyFetcher(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig, costUSD float64) *BrowserFetcher {
	f := &BrowserFetcher{
		browserCfg: browserCfg,
		timeout:    fetchCfg.Timeout,
		cost:       costUSD,
		tier:       TierHeadlessProxy,
		proxyURL:   browserCfg.ProxyURL,
	}
	if f.proxyURL == "" {
		slog.Warn("no proxy configured, tier-3 fetches degrade to plain headless")
	}
	return f
}

func (f *BrowserFetcher) Tier() Tier { return f.tier }

// connect launches the browser on first use. Stealth launcher flags mirror
// a regular Chrome session so automation fingerprints don't leak.
func (f *BrowserFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New().
		Headless(f.browserCfg.Headless).
		NoSandbox(f.browserCfg.NoSandbox)

	if f.browserCfg.BrowserBin != "" {
		l = l.Bin(f.browserCfg.BrowserBin)
	}
	if f.proxyURL != "" {
		l = l.Proxy(f.proxyURL)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, err
	}
	slog.Info("browser launched", "tier", f.tier.Strategy(), "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	f.browser = browser
	return browser, nil
}

// Fetch renders a page in a fresh tab. Page-level failures land inside the
// result with a zero status code. Block and captcha flags are set before the
// result is returned.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) *FetchResult {
	start := time.Now()
	result := &FetchResult{
		URL:      rawURL,
		FinalURL: rawURL,
		Tier:     f.tier,
		Strategy: f.tier.Strategy(),
		CostUSD:  f.cost,
		Attempts: 1,
	}
	defer func() {
		result.Duration = time.Since(start)
		Evaluate(result)
	}()

	browser, err := f.connect()
	if err != nil {
		result.Err = err
		return result
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		result.Err = err
		return result
	}
	defer func() { _ = page.Close() }()

	// Stealth JS must be installed before navigation to take effect.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	// A Google search referer makes the visit look organic.
	if u, parseErr := url.Parse(rawURL); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{
				"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
			},
		}.Call(page)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	p := page.Context(ctx)

	if err := p.Navigate(rawURL); err != nil {
		result.Err = err
		return result
	}

	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", rawURL, "error", err)
	}

	// Status code via the navigation performance entry; CDP network event
	// listeners conflict with the Fetch domain on recent Chromium.
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		result.StatusCode = res.Value.Int()
	}
	if result.StatusCode == 0 {
		// Older Chromium omits responseStatus; a rendered DOM means the
		// navigation committed.
		result.StatusCode = 200
	}

	html, err := p.HTML()
	if err != nil {
		result.Err = err
		result.StatusCode = 0
		return result
	}
	result.HTML = html
	result.Title = evalStringOrEmpty(p, `() => document.title`)
	if final := evalStringOrEmpty(p, `() => window.location.href`); final != "" {
		result.FinalURL = final
	}
	return result
}

// Close kills the browser process. Call on shutdown to avoid zombie Chrome.
func (f *BrowserFetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser != nil {
		f.browser.MustClose()
		f.browser = nil
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
