package models

import "time"

// Frequency is how often a tracked domain or search is re-scraped.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// Delta returns the interval between automatic scrapes. Unknown frequencies
// fall back to weekly.
func (f Frequency) Delta() time.Duration {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyBiweekly:
		return 14 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// TrackedDomain is a domain scheduled for recurring scrapes.
type TrackedDomain struct {
	Domain            string     `json:"domain" badgerhold:"key"`
	DataTypes         []DataType `json:"data_types"`
	ScrapeFrequency   Frequency  `json:"scrape_frequency"`
	MaxPages          int        `json:"max_pages"`
	TemplateID        string     `json:"template_id"`
	WebhookURL        string     `json:"webhook_url,omitempty"`
	IsActive          bool       `json:"is_active"`
	LastAutoScrapedAt time.Time  `json:"last_auto_scraped_at"`
	NextScrapeAt      time.Time  `json:"next_scrape_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TrackedDomainInput is the tracking submission contract.
type TrackedDomainInput struct {
	Domain          string     `json:"domain" validate:"required,min=3"`
	DataTypes       []DataType `json:"data_types" validate:"dive,oneof=blog_url article contact tech_stack resource pricing"`
	ScrapeFrequency Frequency  `json:"scrape_frequency" validate:"required,oneof=daily weekly biweekly monthly"`
	MaxPages        int        `json:"max_pages" validate:"min=1,max=500"`
	TemplateID      string     `json:"template_id,omitempty"`
	WebhookURL      string     `json:"webhook_url,omitempty" validate:"omitempty,url"`
}

// Defaults fills zero-valued fields with the tracking defaults.
func (in *TrackedDomainInput) Defaults() {
	if in.MaxPages == 0 {
		in.MaxPages = 100
	}
	if len(in.DataTypes) == 0 {
		in.DataTypes = []DataType{
			DataTypeBlogURL, DataTypeArticle, DataTypeContact,
			DataTypeTechStack, DataTypeResource, DataTypePricing,
		}
	}
	if in.TemplateID == "" {
		in.TemplateID = "auto"
	}
}

// TrackedSearch is a search query scheduled for recurring discovery runs.
type TrackedSearch struct {
	Query             string     `json:"query" badgerhold:"key"`
	SearchMode        string     `json:"search_mode"`
	SearchPages       int        `json:"search_pages"`
	ResultsPerPage    int        `json:"results_per_page"`
	DataTypes         []DataType `json:"data_types"`
	TemplateID        string     `json:"template_id"`
	MaxPagesPerDomain int        `json:"max_pages_per_domain"`
	ScrapeFrequency   Frequency  `json:"scrape_frequency"`
	IsActive          bool       `json:"is_active"`
	LastRunAt         time.Time  `json:"last_run_at"`
	NextRunAt         time.Time  `json:"next_run_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
