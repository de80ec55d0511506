package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/lakeb2b/scraper/models"
)

// DataStore persists extracted records.
type DataStore struct {
	store *badgerhold.Store
}

// Save stores one record, assigning an ID when missing.
func (s *DataStore) Save(ctx context.Context, d *models.ScrapedData) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := s.store.Insert(d.ID, d); err != nil {
		return fmt.Errorf("store: save data: %w", err)
	}
	return nil
}

// SaveBatch stores a page's worth of records.
func (s *DataStore) SaveBatch(ctx context.Context, records []*models.ScrapedData) error {
	for _, d := range records {
		if err := s.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// ByJob returns every record a job produced, oldest first.
func (s *DataStore) ByJob(ctx context.Context, jobID uuid.UUID) ([]*models.ScrapedData, error) {
	var records []models.ScrapedData
	query := badgerhold.Where("JobID").Eq(jobID).Index("JobID").SortBy("ScrapedAt")
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("store: data by job: %w", err)
	}
	return toPointers(records), nil
}

// ByDomain returns records for a domain, optionally filtered by data type,
// newest first.
func (s *DataStore) ByDomain(ctx context.Context, domain string, dataType models.DataType, limit int) ([]*models.ScrapedData, error) {
	query := badgerhold.Where("Domain").Eq(domain).Index("Domain")
	if dataType != "" {
		query = query.And("DataType").Eq(dataType)
	}
	query = query.SortBy("ScrapedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.ScrapedData
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("store: data by domain: %w", err)
	}
	return toPointers(records), nil
}

// CountByJob returns how many records a job produced.
func (s *DataStore) CountByJob(ctx context.Context, jobID uuid.UUID) (int, error) {
	n, err := s.store.Count(&models.ScrapedData{}, badgerhold.Where("JobID").Eq(jobID).Index("JobID"))
	if err != nil {
		return 0, fmt.Errorf("store: count data: %w", err)
	}
	return int(n), nil
}

func toPointers(records []models.ScrapedData) []*models.ScrapedData {
	out := make([]*models.ScrapedData, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out
}
