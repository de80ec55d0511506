package engine

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"

	"github.com/lakeb2b/scraper/config"
)

// HTTPFetcher is the tier-1 fetcher: plain net/http with a Chrome-like TLS
// fingerprint. Fast and cheap, suitable for static pages that don't need
// JavaScript rendering.
type HTTPFetcher struct {
	client       *http.Client
	maxBodyBytes int64
	timeout      time.Duration
	cost         float64
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		// Fallback: if spec generation fails, use HelloChrome_Auto as-is.
		// (Should never happen with a valid utls version.)
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// NewHTTPFetcher creates the tier-1 fetcher. ALPN is locked to http/1.1 to
// avoid the HTTP/2 framing mismatch that occurs when utls negotiates h2 but
// Go's http.Transport only speaks h1.
func NewHTTPFetcher(fetchCfg config.FetchConfig, costUSD float64) *HTTPFetcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("http_fetcher: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		maxBodyBytes: fetchCfg.MaxBodyBytes,
		timeout:      fetchCfg.Timeout,
		cost:         costUSD,
	}
}

func (f *HTTPFetcher) Tier() Tier { return TierBasicHTTP }

// Fetch retrieves a page over plain HTTP. Failures are reported inside the
// result (zero status, Err set) so the escalator can treat them as blocks.
// Block and captcha flags are set before the result is returned, so direct
// consumers see them too.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) *FetchResult {
	start := time.Now()
	result := &FetchResult{
		URL:      rawURL,
		FinalURL: rawURL,
		Tier:     TierBasicHTTP,
		Strategy: StrategyBasicHTTP,
		CostUSD:  f.cost,
		Attempts: 1,
	}
	defer func() {
		result.Duration = time.Since(start)
		Evaluate(result)
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Err = fmt.Errorf("http_fetcher: build request: %w", err)
		return result
	}

	// Simulate browser-like headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity") // no compression for simplicity

	resp, err := f.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("http_fetcher: do request: %w", err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		result.Err = fmt.Errorf("http_fetcher: read body: %w", err)
		return result
	}

	result.StatusCode = resp.StatusCode
	result.HTML = string(body)
	result.Title = extractTitle(result.HTML)
	result.FinalURL = resp.Request.URL.String()
	result.Headers = flattenHeaders(resp.Header)
	return result
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

// extractTitle uses the Go HTML tokenizer to find the first <title> element.
func extractTitle(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	inTitle := false
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
