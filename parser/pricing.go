package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lakeb2b/scraper/models"
)

var currencyPattern = regexp.MustCompile(`[$€£¥]\s*[\d,]+(?:\.\d{2})?`)

var freeTrialPattern = regexp.MustCompile(`(?i)free trial|try free`)

type billingRule struct {
	cycle    string
	patterns []*regexp.Regexp
}

var billingRules = []billingRule{
	{"monthly", compileAll(`month`, `/mo`, `per month`)},
	{"annual", compileAll(`year`, `annual`, `/yr`, `per year`)},
	{"quarterly", compileAll(`quarter`, `/qtr`)},
}

// pricingCardSelectors locate plan cards; a page needs at least two matches
// for a selector to count as a pricing table.
var pricingCardSelectors = []string{
	".pricing-card",
	".plan",
	".tier",
	".price-box",
	".pricing-table > div",
	".pricing-column",
}

// PricingPlans extracts plan cards from a pricing page.
func PricingPlans(p *Page) []models.PricingMetadata {
	var plans []models.PricingMetadata

	for _, selector := range pricingCardSelectors {
		items := p.doc.Find(selector)
		if items.Length() < 2 {
			continue
		}
		items.Each(func(_ int, item *goquery.Selection) {
			if plan, ok := parsePricingCard(item); ok {
				plans = append(plans, plan)
			}
		})
		if len(plans) > 0 {
			break
		}
	}
	return plans
}

func parsePricingCard(item *goquery.Selection) (models.PricingMetadata, bool) {
	var planName string
	for _, sel := range []string{"h2", "h3", "h4", ".plan-name", ".tier-title", ".name"} {
		if t := strings.TrimSpace(item.Find(sel).First().Text()); t != "" {
			planName = t
			break
		}
	}
	if len(planName) < 2 {
		return models.PricingMetadata{}, false
	}

	text := item.Text()
	price := currencyPattern.FindString(text)

	var features []string
	item.Find("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		if len(features) >= 10 {
			return
		}
		if t := strings.TrimSpace(li.Text()); len(t) > 3 {
			features = append(features, t)
		}
	})

	var ctaText string
	cta := item.Find("button, .cta, a.btn").First()
	if cta.Length() > 0 {
		ctaText = strings.TrimSpace(cta.Text())
	}

	return models.PricingMetadata{
		PlanName:     planName,
		Price:        price,
		BillingCycle: detectBillingCycle(text),
		Features:     features,
		HasFreeTrial: freeTrialPattern.MatchString(text),
		CTAText:      ctaText,
	}, true
}

func detectBillingCycle(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range billingRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(lower) {
				return rule.cycle
			}
		}
	}
	return "unknown"
}
