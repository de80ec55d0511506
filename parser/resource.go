package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lakeb2b/scraper/models"
	"github.com/lakeb2b/scraper/urlutil"
)

// Resource is one extracted content asset with its page location.
type Resource struct {
	URL   string
	Title string
	models.ResourceMetadata
}

type resourceTypeRule struct {
	name     string
	patterns []*regexp.Regexp
}

var resourceTypeRules = []resourceTypeRule{
	{"whitepaper", compileAll(`whitepaper`, `white\s*paper`)},
	{"case_study", compileAll(`case\s*stud`, `success\s*stor`)},
	{"webinar", compileAll(`webinar`, `on-demand`)},
	{"ebook", compileAll(`ebook`, `e-book`, `guide`)},
	{"report", compileAll(`report`, `research`)},
	{"infographic", compileAll(`infographic`)},
}

// resourceCardSelectors locate resource listings, most specific first. The
// first selector that yields classified items wins.
var resourceCardSelectors = []string{
	".resource",
	".resource-card",
	".content-item",
	".card",
	"article",
	".download-item",
	"li",
}

// Resources extracts whitepapers, case studies, webinars and similar assets
// from a resource listing page, plus any direct download links.
func Resources(p *Page) []Resource {
	var resources []Resource

	for _, selector := range resourceCardSelectors {
		p.doc.Find(selector).Each(func(_ int, item *goquery.Selection) {
			if r, ok := parseResourceItem(item, p.baseURL); ok {
				resources = append(resources, r)
			}
		})
		if len(resources) > 0 {
			break
		}
	}

	// Direct PDF/download links stand on their own.
	p.doc.Find(`a[href$=".pdf"], a[download], a[href*="download"]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		abs, err := urlutil.Normalize(href, p.baseURL)
		if err != nil {
			return
		}
		text := strings.TrimSpace(link.Text())
		resources = append(resources, Resource{
			URL:   abs,
			Title: text,
			ResourceMetadata: models.ResourceMetadata{
				ResourceType: detectResourceType(text + " " + abs),
				DownloadURL:  abs,
			},
		})
	})

	return dedupeResources(resources)
}

func parseResourceItem(item *goquery.Selection, baseURL string) (Resource, bool) {
	var title string
	for _, sel := range []string{"h2", "h3", "h4", ".title", "a"} {
		if t := strings.TrimSpace(item.Find(sel).First().Text()); t != "" {
			title = t
			break
		}
	}
	if len(title) < 5 {
		return Resource{}, false
	}

	pageURL := baseURL
	if href, ok := item.Find("a").First().Attr("href"); ok && href != "" {
		if abs, err := urlutil.Normalize(href, baseURL); err == nil {
			pageURL = abs
		}
	}

	text := item.Text()
	resourceType := detectResourceType(text)
	if resourceType == "unknown" {
		return Resource{}, false
	}

	gated := item.Find(`form, input[type="email"], .form-wrapper`).Length() > 0

	var downloadURL string
	if href, ok := item.Find(`a[href$=".pdf"], a[download]`).First().Attr("href"); ok {
		if abs, err := urlutil.Normalize(href, baseURL); err == nil {
			downloadURL = abs
		}
	}

	description := collapseSpace(text)
	if len(description) > 200 {
		description = description[:200]
	}

	return Resource{
		URL:   pageURL,
		Title: title,
		ResourceMetadata: models.ResourceMetadata{
			ResourceType: resourceType,
			Description:  strings.TrimSpace(description),
			Gated:        gated,
			DownloadURL:  downloadURL,
		},
	}, true
}

func detectResourceType(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range resourceTypeRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(lower) {
				return rule.name
			}
		}
	}
	return "unknown"
}

func dedupeResources(resources []Resource) []Resource {
	seen := map[string]struct{}{}
	var out []Resource
	for _, r := range resources {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}
