package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/lakeb2b/scraper/models"
)

// ErrDiscoveryNotFound is returned when a discovery job ID is unknown.
var ErrDiscoveryNotFound = errors.New("discovery job not found")

// DiscoveryStore persists discovery jobs and the domains they found.
type DiscoveryStore struct {
	store *badgerhold.Store
}

// Create stores a new discovery job.
func (s *DiscoveryStore) Create(ctx context.Context, job *models.DiscoveryJob) error {
	if err := s.store.Insert(job.ID, job); err != nil {
		return fmt.Errorf("store: create discovery job: %w", err)
	}
	return nil
}

// Get returns a discovery job by ID.
func (s *DiscoveryStore) Get(ctx context.Context, id uuid.UUID) (*models.DiscoveryJob, error) {
	var job models.DiscoveryJob
	if err := s.store.Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrDiscoveryNotFound
		}
		return nil, fmt.Errorf("store: get discovery job: %w", err)
	}
	return &job, nil
}

// Update replaces a discovery job record.
func (s *DiscoveryStore) Update(ctx context.Context, job *models.DiscoveryJob) error {
	if err := s.store.Update(job.ID, job); err != nil {
		return fmt.Errorf("store: update discovery job: %w", err)
	}
	return nil
}

// SaveDomain stores one discovered domain entry.
func (s *DiscoveryStore) SaveDomain(ctx context.Context, d *models.DiscoveryJobDomain) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := s.store.Insert(d.ID, d); err != nil {
		return fmt.Errorf("store: save discovery domain: %w", err)
	}
	return nil
}

// Domains returns every domain a discovery job produced.
func (s *DiscoveryStore) Domains(ctx context.Context, discoveryID uuid.UUID) ([]*models.DiscoveryJobDomain, error) {
	var domains []models.DiscoveryJobDomain
	query := badgerhold.Where("DiscoveryID").Eq(discoveryID).Index("DiscoveryID").SortBy("CreatedAt")
	if err := s.store.Find(&domains, query); err != nil {
		return nil, fmt.Errorf("store: discovery domains: %w", err)
	}
	out := make([]*models.DiscoveryJobDomain, len(domains))
	for i := range domains {
		out[i] = &domains[i]
	}
	return out, nil
}
