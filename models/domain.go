package models

import "time"

// DomainMetadata is the engine's per-domain learning state. It is the only
// entity mutated by concurrent jobs; all writes go through
// DomainStore.Upsert which merges field by field.
type DomainMetadata struct {
	Domain                 string    `json:"domain" badgerhold:"key"`
	LastSuccessfulStrategy string    `json:"last_successful_strategy,omitempty"`
	BlockCount             int       `json:"block_count"`
	LastScrapedAt          time.Time `json:"last_scraped_at"`
	SuccessRate            float64   `json:"success_rate"`
	AvgCostUSD             float64   `json:"avg_cost_usd"`
	Notes                  string    `json:"notes,omitempty"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// DomainUpdate is a partial update applied with COALESCE merge semantics:
// nil fields leave the stored value untouched, BlockCountIncrement adds to
// the stored counter, and timestamps only ever advance.
type DomainUpdate struct {
	LastSuccessfulStrategy *string
	BlockCountIncrement    int
	SuccessRate            *float64
	AvgCostUSD             *float64
	Notes                  *string
}
