package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscoveryStatus is the lifecycle state of a discovery job.
type DiscoveryStatus string

const (
	DiscoverySearching DiscoveryStatus = "searching"
	DiscoveryScraping  DiscoveryStatus = "scraping"
	DiscoveryCompleted DiscoveryStatus = "completed"
	DiscoveryFailed    DiscoveryStatus = "failed"
)

// SearchResult is one hit from the external search provider. The provider
// client itself is an external collaborator; the engine only consumes
// result lists.
type SearchResult struct {
	URL     string  `json:"url"`
	Domain  string  `json:"domain"`
	Title   string  `json:"title,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score"`
}

// DiscoveryJob fans a search query out into per-domain scrape jobs.
type DiscoveryJob struct {
	ID                uuid.UUID       `json:"id" badgerhold:"key"`
	Query             string          `json:"query"`
	SearchMode        string          `json:"search_mode"`
	SearchPages       int             `json:"search_pages"`
	ResultsPerPage    int             `json:"results_per_page"`
	DataTypes         []DataType      `json:"data_types"`
	TemplateID        string          `json:"template_id"`
	MaxPagesPerDomain int             `json:"max_pages_per_domain"`
	Status            DiscoveryStatus `json:"status"`
	DomainsFound      int             `json:"domains_found"`
	DomainsSkipped    int             `json:"domains_skipped"`
	SearchResults     []SearchResult  `json:"search_results,omitempty"`
	CostUSD           float64         `json:"cost_usd"`
	ErrorMessage      string          `json:"error_message,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

// DiscoveryJobDomain is one unique domain discovered by a search, with the
// scrape job it spawned (nil when skipped).
type DiscoveryJobDomain struct {
	ID            uuid.UUID  `json:"id" badgerhold:"key"`
	DiscoveryID   uuid.UUID  `json:"discovery_id" badgerhold:"index"`
	Domain        string     `json:"domain"`
	SourceURL     string     `json:"source_url,omitempty"`
	SourceTitle   string     `json:"source_title,omitempty"`
	SourceSnippet string     `json:"source_snippet,omitempty"`
	SourceScore   float64    `json:"source_score"`
	Status        string     `json:"status"`
	SkipReason    string     `json:"skip_reason,omitempty"`
	ScrapeJobID   *uuid.UUID `json:"scrape_job_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DiscoveryJobInput is the discovery submission contract.
type DiscoveryJobInput struct {
	Query             string     `json:"query" validate:"required,min=1,max=500"`
	SearchMode        string     `json:"search_mode" validate:"omitempty,oneof=auto filter glimpse"`
	SearchPages       int        `json:"search_pages" validate:"min=1,max=10"`
	ResultsPerPage    int        `json:"results_per_page" validate:"min=1,max=50"`
	DataTypes         []DataType `json:"data_types" validate:"required,min=1,dive,oneof=blog_url article contact tech_stack resource pricing"`
	TemplateID        string     `json:"template_id,omitempty"`
	MaxPagesPerDomain int        `json:"max_pages_per_domain" validate:"min=1,max=500"`
	Priority          int        `json:"priority" validate:"min=1,max=10"`
}

// Defaults fills zero-valued fields with the discovery defaults.
func (in *DiscoveryJobInput) Defaults() {
	if in.SearchMode == "" {
		in.SearchMode = "auto"
	}
	if in.SearchPages == 0 {
		in.SearchPages = 3
	}
	if in.ResultsPerPage == 0 {
		in.ResultsPerPage = 10
	}
	if in.TemplateID == "" {
		in.TemplateID = "generic"
	}
	if in.MaxPagesPerDomain == 0 {
		in.MaxPagesPerDomain = 50
	}
	if in.Priority == 0 {
		in.Priority = 5
	}
}

// NewDiscoveryJob builds a searching-state job from validated input.
func NewDiscoveryJob(in *DiscoveryJobInput) *DiscoveryJob {
	return &DiscoveryJob{
		ID:                uuid.New(),
		Query:             in.Query,
		SearchMode:        in.SearchMode,
		SearchPages:       in.SearchPages,
		ResultsPerPage:    in.ResultsPerPage,
		DataTypes:         append([]DataType(nil), in.DataTypes...),
		TemplateID:        in.TemplateID,
		MaxPagesPerDomain: in.MaxPagesPerDomain,
		Status:            DiscoverySearching,
		CreatedAt:         time.Now().UTC(),
	}
}
