package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/lakeb2b/scraper/models"
)

// TrackedStore persists the recurring-scrape configuration: tracked domains
// and tracked searches.
type TrackedStore struct {
	store *badgerhold.Store
}

// UpsertDomain creates or replaces a tracked domain. NextScrapeAt is
// initialized to now for new records so the next sweep picks them up.
func (s *TrackedStore) UpsertDomain(ctx context.Context, td *models.TrackedDomain) error {
	now := time.Now().UTC()
	existing, err := s.GetDomain(ctx, td.Domain)
	if err != nil {
		return err
	}
	if existing == nil {
		td.CreatedAt = now
		if td.NextScrapeAt.IsZero() {
			td.NextScrapeAt = now
		}
	} else {
		td.CreatedAt = existing.CreatedAt
		td.LastAutoScrapedAt = existing.LastAutoScrapedAt
		if td.NextScrapeAt.IsZero() {
			td.NextScrapeAt = existing.NextScrapeAt
		}
	}
	td.UpdatedAt = now
	if err := s.store.Upsert(td.Domain, td); err != nil {
		return fmt.Errorf("store: upsert tracked domain: %w", err)
	}
	return nil
}

// GetDomain returns a tracked domain, or nil when not tracked.
func (s *TrackedStore) GetDomain(ctx context.Context, domain string) (*models.TrackedDomain, error) {
	var td models.TrackedDomain
	if err := s.store.Get(domain, &td); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get tracked domain: %w", err)
	}
	return &td, nil
}

// DueDomains returns active tracked domains whose next scrape time has
// passed.
func (s *TrackedStore) DueDomains(ctx context.Context, now time.Time) ([]*models.TrackedDomain, error) {
	var domains []models.TrackedDomain
	query := badgerhold.Where("IsActive").Eq(true).And("NextScrapeAt").Le(now)
	if err := s.store.Find(&domains, query); err != nil {
		return nil, fmt.Errorf("store: due tracked domains: %w", err)
	}
	out := make([]*models.TrackedDomain, len(domains))
	for i := range domains {
		out[i] = &domains[i]
	}
	return out, nil
}

// MarkDomainScraped records an automatic scrape and schedules the next one
// per the domain's frequency.
func (s *TrackedStore) MarkDomainScraped(ctx context.Context, domain string, at time.Time) error {
	td, err := s.GetDomain(ctx, domain)
	if err != nil {
		return err
	}
	if td == nil {
		return nil
	}
	td.LastAutoScrapedAt = at
	td.NextScrapeAt = at.Add(td.ScrapeFrequency.Delta())
	td.UpdatedAt = time.Now().UTC()
	if err := s.store.Upsert(td.Domain, td); err != nil {
		return fmt.Errorf("store: mark tracked domain: %w", err)
	}
	return nil
}

// DeactivateDomain stops automatic scrapes for a domain without deleting
// its configuration.
func (s *TrackedStore) DeactivateDomain(ctx context.Context, domain string) error {
	td, err := s.GetDomain(ctx, domain)
	if err != nil || td == nil {
		return err
	}
	td.IsActive = false
	td.UpdatedAt = time.Now().UTC()
	if err := s.store.Upsert(td.Domain, td); err != nil {
		return fmt.Errorf("store: deactivate tracked domain: %w", err)
	}
	return nil
}

// UpsertSearch creates or replaces a tracked search.
func (s *TrackedStore) UpsertSearch(ctx context.Context, ts *models.TrackedSearch) error {
	now := time.Now().UTC()
	var existing models.TrackedSearch
	err := s.store.Get(ts.Query, &existing)
	switch {
	case errors.Is(err, badgerhold.ErrNotFound):
		ts.CreatedAt = now
		if ts.NextRunAt.IsZero() {
			ts.NextRunAt = now
		}
	case err != nil:
		return fmt.Errorf("store: get tracked search: %w", err)
	default:
		ts.CreatedAt = existing.CreatedAt
		ts.LastRunAt = existing.LastRunAt
		if ts.NextRunAt.IsZero() {
			ts.NextRunAt = existing.NextRunAt
		}
	}
	ts.UpdatedAt = now
	if err := s.store.Upsert(ts.Query, ts); err != nil {
		return fmt.Errorf("store: upsert tracked search: %w", err)
	}
	return nil
}

// DueSearches returns active tracked searches whose next run time has
// passed.
func (s *TrackedStore) DueSearches(ctx context.Context, now time.Time) ([]*models.TrackedSearch, error) {
	var searches []models.TrackedSearch
	query := badgerhold.Where("IsActive").Eq(true).And("NextRunAt").Le(now)
	if err := s.store.Find(&searches, query); err != nil {
		return nil, fmt.Errorf("store: due tracked searches: %w", err)
	}
	out := make([]*models.TrackedSearch, len(searches))
	for i := range searches {
		out[i] = &searches[i]
	}
	return out, nil
}

// MarkSearchRun records a discovery run and schedules the next one.
func (s *TrackedStore) MarkSearchRun(ctx context.Context, query string, at time.Time) error {
	var ts models.TrackedSearch
	if err := s.store.Get(query, &ts); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("store: get tracked search: %w", err)
	}
	ts.LastRunAt = at
	ts.NextRunAt = at.Add(ts.ScrapeFrequency.Delta())
	ts.UpdatedAt = time.Now().UTC()
	if err := s.store.Upsert(query, &ts); err != nil {
		return fmt.Errorf("store: mark tracked search: %w", err)
	}
	return nil
}
