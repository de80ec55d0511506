// Package store persists jobs, scraped data, domain learning state, and
// tracking configuration in an embedded Badger database via badgerhold.
package store

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/lakeb2b/scraper/config"
)

// Manager owns the Badger connection and hands out the per-entity stores.
type Manager struct {
	store     *badgerhold.Store
	jobs      *JobStore
	data      *DataStore
	domains   *DomainStore
	tracked   *TrackedStore
	discovery *DiscoveryStore
}

// Open opens (or creates) the database and initializes all stores.
func Open(cfg config.StoreConfig) (*Manager, error) {
	options := badgerhold.DefaultOptions
	options.Logger = nil // badger's own logger is too chatty for slog setups
	if cfg.InMemory {
		options.InMemory = true
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
		options.Dir = cfg.Dir
		options.ValueDir = cfg.Dir
	}

	s, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	slog.Info("store opened", "dir", cfg.Dir, "inMemory", cfg.InMemory)

	return &Manager{
		store:     s,
		jobs:      &JobStore{store: s},
		data:      &DataStore{store: s},
		domains:   &DomainStore{store: s},
		tracked:   &TrackedStore{store: s},
		discovery: &DiscoveryStore{store: s},
	}, nil
}

// Jobs returns the scrape job store.
func (m *Manager) Jobs() *JobStore { return m.jobs }

// Data returns the scraped data store.
func (m *Manager) Data() *DataStore { return m.data }

// Domains returns the domain metadata store.
func (m *Manager) Domains() *DomainStore { return m.domains }

// Tracked returns the tracked domain/search store.
func (m *Manager) Tracked() *TrackedStore { return m.tracked }

// Discovery returns the discovery job store.
func (m *Manager) Discovery() *DiscoveryStore { return m.discovery }

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}
