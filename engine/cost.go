package engine

import "sync"

// CostTracker accumulates the fetch spend of one job and enforces the
// per-job budget. Safe for concurrent use.
type CostTracker struct {
	mu     sync.Mutex
	total  float64
	budget float64
}

// NewCostTracker creates a tracker with the given budget in USD. A zero or
// negative budget disables the check.
func NewCostTracker(budgetUSD float64) *CostTracker {
	return &CostTracker{budget: budgetUSD}
}

// Add records spend and returns the running total.
func (c *CostTracker) Add(costUSD float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total += costUSD
	return c.total
}

// Total returns the accumulated spend.
func (c *CostTracker) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Exceeded reports whether the budget has been spent.
func (c *CostTracker) Exceeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget > 0 && c.total >= c.budget
}
