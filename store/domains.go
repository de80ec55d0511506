package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/lakeb2b/scraper/models"
)

// DomainStore persists the per-domain learning state. All writes go through
// Upsert, which merges partial updates so concurrent jobs on the same
// domain never wipe each other's fields.
type DomainStore struct {
	store *badgerhold.Store
	mu    sync.Mutex
}

// Get returns the metadata for a domain, or nil when unknown.
func (s *DomainStore) Get(ctx context.Context, domain string) (*models.DomainMetadata, error) {
	var meta models.DomainMetadata
	if err := s.store.Get(domain, &meta); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get domain: %w", err)
	}
	return &meta, nil
}

// Upsert merges a partial update into the stored record: nil fields keep
// the stored value, BlockCountIncrement adds to the counter, and
// LastScrapedAt only ever advances.
func (s *DomainStore) Upsert(ctx context.Context, domain string, update models.DomainUpdate) (*models.DomainMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.Get(ctx, domain)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if meta == nil {
		meta = &models.DomainMetadata{Domain: domain}
	}

	if update.LastSuccessfulStrategy != nil {
		meta.LastSuccessfulStrategy = *update.LastSuccessfulStrategy
	}
	meta.BlockCount += update.BlockCountIncrement
	if update.SuccessRate != nil {
		meta.SuccessRate = *update.SuccessRate
	}
	if update.AvgCostUSD != nil {
		// Running average over the stored and new values keeps the field
		// stable without persisting a sample count.
		if meta.AvgCostUSD == 0 {
			meta.AvgCostUSD = *update.AvgCostUSD
		} else {
			meta.AvgCostUSD = (meta.AvgCostUSD + *update.AvgCostUSD) / 2
		}
	}
	if update.Notes != nil {
		meta.Notes = *update.Notes
	}
	if now.After(meta.LastScrapedAt) {
		meta.LastScrapedAt = now
	}
	meta.UpdatedAt = now

	if err := s.store.Upsert(domain, meta); err != nil {
		return nil, fmt.Errorf("store: upsert domain: %w", err)
	}
	return meta, nil
}

// LastSuccessfulStrategy implements engine.DomainLearner.
func (s *DomainStore) LastSuccessfulStrategy(ctx context.Context, domain string) string {
	meta, err := s.Get(ctx, domain)
	if err != nil {
		slog.Warn("domain lookup failed", "domain", domain, "error", err)
		return ""
	}
	if meta == nil {
		return ""
	}
	return meta.LastSuccessfulStrategy
}

// RecordSuccess implements engine.DomainLearner.
func (s *DomainStore) RecordSuccess(ctx context.Context, domain, strategy string, costUSD float64) {
	_, err := s.Upsert(ctx, domain, models.DomainUpdate{
		LastSuccessfulStrategy: &strategy,
		AvgCostUSD:             &costUSD,
	})
	if err != nil {
		slog.Warn("domain success record failed", "domain", domain, "error", err)
	}
}

// RecordBlock implements engine.DomainLearner.
func (s *DomainStore) RecordBlock(ctx context.Context, domain string) {
	_, err := s.Upsert(ctx, domain, models.DomainUpdate{BlockCountIncrement: 1})
	if err != nil {
		slog.Warn("domain block record failed", "domain", domain, "error", err)
	}
}

// ScrapedSince reports whether the domain was scraped after the cutoff.
func (s *DomainStore) ScrapedSince(ctx context.Context, domain string, cutoff time.Time) (bool, error) {
	meta, err := s.Get(ctx, domain)
	if err != nil || meta == nil {
		return false, err
	}
	return meta.LastScrapedAt.After(cutoff), nil
}
