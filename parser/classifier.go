package parser

import (
	"net/url"
	"regexp"

	"github.com/lakeb2b/scraper/models"
)

// Classification is the result of routing one URL to a data type.
type Classification struct {
	URL        string          `json:"url"`
	DataType   models.DataType `json:"data_type"`
	Confidence float64         `json:"confidence"`
}

type classifierRule struct {
	dataType models.DataType
	patterns []*regexp.Regexp
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

// classifierRules are matched against the URL path in order; the first hit
// wins. Pricing outranks everything, and team/about pages count as contact
// signals but only after the more specific categories had their chance.
var classifierRules = []classifierRule{
	{models.DataTypePricing, compileAll(
		`/pricing\b`, `/plans?\b`, `/packages?\b`,
	)},
	{models.DataTypeContact, compileAll(
		`/contact\b`, `/get-in-touch\b`, `/demo\b`, `/request\b`,
		`/careers?\b`, `/jobs?\b`,
	)},
	{models.DataTypeResource, compileAll(
		`/resources?\b`, `/whitepapers?\b`, `/case-stud`, `/webinars?\b`,
		`/ebooks?\b`, `/library\b`, `/downloads?\b`, `/guides?\b`,
	)},
	{models.DataTypeBlogURL, compileAll(
		`/blog\b`, `/insights?\b`, `/news\b`, `/articles?\b`,
		`/posts?\b`, `/stories\b`,
		`/\d{4}/\d{2}/`, // date-based article URLs
	)},
	{models.DataTypeContact, compileAll(
		`/team\b`, `/about\b`, `/leadership\b`, `/people\b`,
		`/our-team\b`, `/staff\b`,
	)},
}

// ClassifyURL routes a URL to a data type based on its path. Unmatched URLs
// default to blog_url at low confidence so they remain useful for site
// mapping.
func ClassifyURL(rawURL string) Classification {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	for _, rule := range classifierRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(path) {
				return Classification{URL: rawURL, DataType: rule.dataType, Confidence: 0.8}
			}
		}
	}
	return Classification{URL: rawURL, DataType: models.DataTypeBlogURL, Confidence: 0.2}
}

// ClassifyURLs classifies a list of URLs.
func ClassifyURLs(urls []string) []Classification {
	out := make([]Classification, len(urls))
	for i, u := range urls {
		out[i] = ClassifyURL(u)
	}
	return out
}
