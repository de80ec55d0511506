package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/lakeb2b/scraper/models"
)

// ErrJobNotFound is returned when a job ID has no stored record.
var ErrJobNotFound = errors.New("job not found")

// JobStore persists scrape jobs and enforces the status state machine on
// every transition.
type JobStore struct {
	store *badgerhold.Store

	// mu serializes status transitions; badgerhold has no read-modify-write
	// primitive and concurrent workers update different jobs rarely enough
	// that a single lock is fine.
	mu sync.Mutex
}

// Create stores a new job.
func (s *JobStore) Create(ctx context.Context, job *models.ScrapeJob) error {
	if err := s.store.Insert(job.ID, job); err != nil {
		return fmt.Errorf("store: create job: %w", err)
	}
	return nil
}

// Get returns a job by ID.
func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*models.ScrapeJob, error) {
	var job models.ScrapeJob
	if err := s.store.Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("store: get job: %w", err)
	}
	return &job, nil
}

// JobListOptions filter and page the job listing.
type JobListOptions struct {
	Status models.JobStatus
	Domain string
	Limit  int
	Offset int
}

// List returns jobs newest first.
func (s *JobStore) List(ctx context.Context, opts JobListOptions) ([]*models.ScrapeJob, error) {
	query := &badgerhold.Query{}
	if opts.Status != "" {
		query = badgerhold.Where("Status").Eq(opts.Status)
		if opts.Domain != "" {
			query = query.And("Domain").Eq(opts.Domain)
		}
	} else if opts.Domain != "" {
		query = badgerhold.Where("Domain").Eq(opts.Domain)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Skip(opts.Offset)
	}

	var jobs []models.ScrapeJob
	if err := s.store.Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("store: list jobs: %w", err)
	}
	out := make([]*models.ScrapeJob, len(jobs))
	for i := range jobs {
		out[i] = &jobs[i]
	}
	return out, nil
}

// UpdateStatus transitions a job to a new status, applying mutate (may be
// nil) to the record under the same lock. Illegal transitions — anything
// out of a terminal state, or skipping pending→running — are rejected with
// models.ErrTerminalJob wrapped in the error.
func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, to models.JobStatus, mutate func(*models.ScrapeJob)) (*models.ScrapeJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(job.Status, to) {
		if job.Status.Terminal() {
			return nil, fmt.Errorf("store: job %s is %s: %w", id, job.Status, models.ErrTerminalJob)
		}
		return nil, fmt.Errorf("store: illegal job transition %s -> %s", job.Status, to)
	}

	job.Status = to
	if to.Terminal() {
		now := time.Now().UTC()
		job.CompletedAt = &now
	}
	if mutate != nil {
		mutate(job)
	}
	if err := s.store.Update(id, job); err != nil {
		return nil, fmt.Errorf("store: update job: %w", err)
	}
	return job, nil
}

// LatestForDomain returns the most recent job for a domain, or nil.
func (s *JobStore) LatestForDomain(ctx context.Context, domain string) (*models.ScrapeJob, error) {
	jobs, err := s.List(ctx, JobListOptions{Domain: domain, Limit: 1})
	if err != nil || len(jobs) == 0 {
		return nil, err
	}
	return jobs[0], nil
}
