package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a scrape job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// terminal statuses admit no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// CanTransition reports whether a job may move from one status to another.
// All status writes must go through this check; callers never set the
// status field directly.
func CanTransition(from, to JobStatus) bool {
	switch from {
	case JobPending:
		return to == JobRunning || to == JobFailed
	case JobRunning:
		return to == JobCompleted || to == JobFailed
	default:
		return false
	}
}

// ErrTerminalJob is returned when a status update targets a job that has
// already completed or failed.
var ErrTerminalJob = errors.New("job is in a terminal state")

// ScrapeJob is a single scraping run against one domain.
type ScrapeJob struct {
	ID           uuid.UUID  `json:"id" badgerhold:"key"`
	Domain       string     `json:"domain"`
	TemplateID   string     `json:"template_id"`
	Status       JobStatus  `json:"status"`
	StrategyUsed string     `json:"strategy_used,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CostUSD      float64    `json:"cost_usd"`
	DurationMs   int64      `json:"duration_ms"`
	PagesScraped int        `json:"pages_scraped"`
	MaxPages     int        `json:"max_pages"`
	DataTypes    []DataType `json:"data_types"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ScrapeJobInput is the job submission contract consumed by the API layer.
type ScrapeJobInput struct {
	Domain     string     `json:"domain" validate:"required,min=3"`
	TemplateID string     `json:"template_id,omitempty"`
	MaxPages   int        `json:"max_pages" validate:"min=1,max=500"`
	DataTypes  []DataType `json:"data_types" validate:"dive,oneof=blog_url article contact tech_stack resource pricing"`
	Priority   int        `json:"priority" validate:"min=1,max=10"`
}

// Defaults fills zero-valued fields with the documented submission defaults.
func (in *ScrapeJobInput) Defaults() {
	if in.MaxPages == 0 {
		in.MaxPages = 100
	}
	if len(in.DataTypes) == 0 {
		in.DataTypes = []DataType{DataTypeBlogURL, DataTypeArticle}
	}
	if in.Priority == 0 {
		in.Priority = 5
	}
	if in.TemplateID == "" {
		in.TemplateID = "auto"
	}
}

// NewScrapeJob builds a pending job from validated input.
func NewScrapeJob(in *ScrapeJobInput) *ScrapeJob {
	return &ScrapeJob{
		ID:         uuid.New(),
		Domain:     in.Domain,
		TemplateID: in.TemplateID,
		Status:     JobPending,
		MaxPages:   in.MaxPages,
		DataTypes:  append([]DataType(nil), in.DataTypes...),
		CreatedAt:  time.Now().UTC(),
	}
}

// JobResult is the summary returned by the orchestrator when a job finishes.
type JobResult struct {
	JobID         uuid.UUID `json:"job_id"`
	Domain        string    `json:"domain"`
	StrategyUsed  string    `json:"strategy_used"`
	PagesScraped  int       `json:"pages_scraped"`
	DataExtracted int       `json:"data_extracted"`
	CostUSD       float64   `json:"cost_usd"`
	DurationMs    int64     `json:"duration_ms"`
	Errors        []string  `json:"errors,omitempty"`
}
