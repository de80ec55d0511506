package engine

import (
	"sync"
	"time"
)

// strategyEntry stores the preferred tier for a domain with a TTL.
type strategyEntry struct {
	tier      Tier
	expiresAt time.Time
}

// StrategyCache remembers which tier last worked for each domain. It is a
// write-through cache in front of the persistent domain metadata, so hot
// domains skip a store read on every page. Entries expire after the
// configured TTL and are pruned periodically.
type StrategyCache struct {
	store sync.Map // domain (string) -> *strategyEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewStrategyCache creates a StrategyCache with the given TTL and starts a
// background goroutine that prunes expired entries every hour.
func NewStrategyCache(ttl time.Duration) *StrategyCache {
	sc := &StrategyCache{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go sc.cleanupLoop()
	return sc
}

// Get returns the remembered tier for a domain, or 0 if not found / expired.
func (sc *StrategyCache) Get(domain string) Tier {
	val, ok := sc.store.Load(domain)
	if !ok {
		return 0
	}
	entry := val.(*strategyEntry)
	if time.Now().After(entry.expiresAt) {
		sc.store.Delete(domain)
		return 0
	}
	return entry.tier
}

// Set records which tier succeeded for a domain.
func (sc *StrategyCache) Set(domain string, tier Tier) {
	sc.store.Store(domain, &strategyEntry{
		tier:      tier,
		expiresAt: time.Now().Add(sc.ttl),
	})
}

// Delete removes the memory for a domain (e.g. after the remembered tier
// started getting blocked).
func (sc *StrategyCache) Delete(domain string) {
	sc.store.Delete(domain)
}

// Stop terminates the background cleanup goroutine.
func (sc *StrategyCache) Stop() {
	close(sc.done)
}

func (sc *StrategyCache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-sc.done:
			return
		case <-ticker.C:
			now := time.Now()
			sc.store.Range(func(key, value any) bool {
				entry := value.(*strategyEntry)
				if now.After(entry.expiresAt) {
					sc.store.Delete(key)
				}
				return true
			})
		}
	}
}
