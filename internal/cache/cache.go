// Package cache memoizes completed verdicts per URL for a bounded window
// and owns the process-wide aggregate counters. Entries expire lazily at
// lookup time; there is no background sweeper.
package cache

import (
	"sync"
	"time"

	"github.com/phishguard/phishguard/internal/scoring"
)

// Stats is a read-only snapshot of the aggregate counters. Counters are
// monotonically non-decreasing and reset only by process restart.
type Stats struct {
	TotalChecks  int64 `json:"total_checks"`
	ThreatsFound int64 `json:"threats_found"`
	CacheHits    int64 `json:"cache_hits"`
}

type entry struct {
	verdict   *scoring.Verdict
	createdAt time.Time
}

// VerdictCache is a mutex-guarded TTL cache keyed by URL.
type VerdictCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	stats   Stats

	// now is swappable for expiry tests.
	now func() time.Time
}

// New creates a VerdictCache with the given TTL.
func New(ttl time.Duration) *VerdictCache {
	return &VerdictCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns the cached verdict for url, or nil. An entry whose age has
// reached the TTL is deleted and reported as a miss; only fresh hits bump
// the cacheHits counter.
func (c *VerdictCache) Lookup(url string) *scoring.Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return nil
	}
	if c.now().Sub(e.createdAt) >= c.ttl {
		delete(c.entries, url)
		return nil
	}
	c.stats.CacheHits++
	return e.verdict
}

// Store caches a freshly computed verdict and updates the counters. A
// SUSPICIOUS or DANGEROUS verdict counts as a found threat. Concurrent
// stores for the same URL may race; last write wins.
func (c *VerdictCache) Store(url string, v *scoring.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = entry{verdict: v, createdAt: c.now()}
	c.stats.TotalChecks++
	if v.Level == scoring.LevelSuspicious || v.Level == scoring.LevelDangerous {
		c.stats.ThreatsFound++
	}
}

// Stats returns a snapshot of the aggregate counters.
func (c *VerdictCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
