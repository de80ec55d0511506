package parser

import (
	"strings"

	"github.com/lakeb2b/scraper/models"
)

type techSignature struct {
	name     string
	category string
	signals  []string
}

// techSignatures identify a site's stack from substrings in the HTML source
// or response headers. Matching is case-insensitive.
var techSignatures = []techSignature{
	// CMS
	{"WordPress", "cms", []string{"wp-content", "wp-includes", "wordpress", "wp-json"}},
	{"HubSpot", "cms", []string{"js.hs-scripts.com", "hubspot", ".hs-", "hbspt"}},
	{"Webflow", "cms", []string{"webflow.com", "wf-page", "wf-section"}},
	{"Drupal", "cms", []string{"/sites/default/", "drupal.settings"}},
	{"Squarespace", "cms", []string{"squarespace.com", "sqsp", "static.squarespace"}},
	{"Wix", "cms", []string{"wix.com", "wixsite.com", "parastorage.com"}},
	{"Shopify", "cms", []string{"cdn.shopify.com", "shopify", "myshopify.com"}},
	{"Ghost", "cms", []string{"ghost.io", "ghost-", "content/themes"}},
	{"Contentful", "cms", []string{"contentful.com", "ctfassets.net"}},
	// Analytics
	{"Google Analytics", "analytics", []string{"google-analytics.com", "gtag(", "ga.js", "googletagmanager.com"}},
	{"Segment", "analytics", []string{"cdn.segment.com", "analytics.js", "segment.io"}},
	{"Mixpanel", "analytics", []string{"mixpanel.com", "mixpanel.init"}},
	{"Amplitude", "analytics", []string{"amplitude.com", "cdn.amplitude.com"}},
	{"Heap", "analytics", []string{"heap-", "heapanalytics.com"}},
	{"Hotjar", "analytics", []string{"hotjar.com", "static.hotjar.com"}},
	{"Plausible", "analytics", []string{"plausible.io"}},
	// Marketing automation
	{"Marketo", "marketing", []string{"munchkin.marketo.net", "mktoforms"}},
	{"Pardot", "marketing", []string{"pardot.com", "pi.pardot.com", "go.pardot.com"}},
	{"Drift", "marketing", []string{"drift.com", "driftt.com", "js.driftt.com"}},
	{"Intercom", "marketing", []string{"intercom.io", "intercomsettings", "widget.intercom.io"}},
	{"HubSpot Marketing", "marketing", []string{"js.hs-analytics.net", "forms.hubspot.com"}},
	{"Mailchimp", "marketing", []string{"mailchimp.com", "list-manage.com", "chimpstatic.com"}},
	{"ActiveCampaign", "marketing", []string{"activecampaign.com", "trackcmp.net"}},
	{"Salesforce", "marketing", []string{"salesforce.com", "force.com"}},
	{"ZoomInfo", "marketing", []string{"zoominfo.com", "ws.zoominfo.com"}},
	{"6sense", "marketing", []string{"6sense.com", "j.6sc.co"}},
	{"Clearbit", "marketing", []string{"clearbit.com", "x.clearbitjs.com"}},
	// JS frameworks
	{"React", "framework", []string{"react.", "reactdom", "__next_data__", "_next/"}},
	{"Vue.js", "framework", []string{"vue.js", "__vue__", "v-if=", "vuejs"}},
	{"Angular", "framework", []string{"angular", "ng-version", "ng-app"}},
	{"Next.js", "framework", []string{"__next_data__", "_next/static", "next/dist"}},
	{"Gatsby", "framework", []string{"gatsby", "/page-data/"}},
	{"Nuxt", "framework", []string{"__nuxt", "nuxt.js"}},
	{"Svelte", "framework", []string{"svelte", "__svelte"}},
	// CDN
	{"Cloudflare", "cdn", []string{"cf-ray", "cloudflare"}},
	{"Fastly", "cdn", []string{"fastly", "x-served-by"}},
	{"Akamai", "cdn", []string{"akamai", "akamaitech"}},
	{"AWS CloudFront", "cdn", []string{"cloudfront.net", "x-amz-cf"}},
	{"Vercel", "cdn", []string{"vercel", "x-vercel-"}},
	{"Netlify", "cdn", []string{"netlify", "x-nf-request-id"}},
	// JS libraries
	{"jQuery", "js_library", []string{"jquery", "jquery.min.js"}},
	{"Bootstrap", "js_library", []string{"bootstrap.min", "bootstrap.css"}},
	{"Tailwind CSS", "js_library", []string{"tailwindcss", "tailwind."}},
	{"Lodash", "js_library", []string{"lodash", "lodash.min"}},
}

// DetectTech scans HTML source and response headers for known technology
// signatures. The first matching CMS wins the platform slot; everything
// else accumulates into its category list.
func DetectTech(html string, headers map[string]string) models.TechStackMetadata {
	lowerHTML := strings.ToLower(html)
	lowerHeaders := make([]string, 0, len(headers))
	for k, v := range headers {
		lowerHeaders = append(lowerHeaders, strings.ToLower(k)+": "+strings.ToLower(v))
	}

	var result models.TechStackMetadata
	for _, sig := range techSignatures {
		if !matchesSignals(sig.signals, lowerHTML, lowerHeaders) {
			continue
		}
		switch sig.category {
		case "cms":
			if result.Platform == "" {
				result.Platform = sig.name
			}
		case "analytics":
			result.Analytics = append(result.Analytics, sig.name)
		case "marketing":
			result.MarketingTools = append(result.MarketingTools, sig.name)
		case "framework":
			result.Frameworks = append(result.Frameworks, sig.name)
		case "cdn":
			result.CDN = append(result.CDN, sig.name)
		case "js_library":
			result.JSLibraries = append(result.JSLibraries, sig.name)
		}
	}
	return result
}

func matchesSignals(signals []string, html string, headers []string) bool {
	for _, signal := range signals {
		if strings.Contains(html, signal) {
			return true
		}
		for _, h := range headers {
			if strings.Contains(h, signal) {
				return true
			}
		}
	}
	return false
}
