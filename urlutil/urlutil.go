// Package urlutil provides URL normalization and domain helpers shared by
// the crawler, parser, and discovery pipeline.
package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// skipExtensions are path suffixes that never lead to scrapeable HTML.
var skipExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".ico",
	".css", ".js", ".woff", ".woff2", ".ttf", ".eot",
	".mp3", ".mp4", ".avi", ".mov",
	".zip", ".gz", ".tar",
	".xml", ".rss", ".atom",
}

// Normalize resolves rawURL against base (when relative), strips the
// fragment, lowercases scheme and host, and trims trailing slashes from the
// path. It is idempotent: Normalize(Normalize(u)) == Normalize(u).
func Normalize(rawURL, base string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if base != "" && !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		u = b.ResolveReference(u)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if p := strings.TrimRight(u.Path, "/"); p != "" {
		u.Path = p
	} else {
		u.Path = "/"
	}
	return u.String(), nil
}

// EnsureScheme prefixes https:// when rawURL carries no scheme, so bare
// domains from user input become fetchable URLs.
func EnsureScheme(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// Domain extracts the lowercased host from a URL or bare domain, stripping
// any www. prefix and port.
func Domain(rawURL string) string {
	u, err := url.Parse(EnsureScheme(rawURL))
	if err != nil || u.Hostname() == "" {
		d := strings.ToLower(strings.SplitN(rawURL, "/", 2)[0])
		return strings.TrimPrefix(d, "www.")
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// RegistrableDomain reduces a host to its eTLD+1 ("blog.example.co.uk"
// becomes "example.co.uk"). When the public suffix list can't resolve the
// host, the stripped host is returned as-is.
func RegistrableDomain(host string) string {
	host = Domain(host)
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// SameDomain reports whether two URLs share a registrable domain, so
// subdomain links still count as in-site during crawls.
func SameDomain(a, b string) bool {
	return RegistrableDomain(a) == RegistrableDomain(b)
}

// IsScrapeWorthy reports whether a link is worth fetching: not empty, not a
// fragment/mailto/tel/javascript link, and not a binary or asset extension.
func IsScrapeWorthy(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	for _, prefix := range []string{"#", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(rawURL, prefix) {
			return false
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}

// Dedupe returns urls with duplicates removed, preserving first-seen order.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
