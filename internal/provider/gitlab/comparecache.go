package gitlab

import (
	"sync"

	"github.com/augurbot/augur/internal/provider"
)

// CompareKey identifies one submodule compare: remote project path plus the
// two revisions being diffed.
type CompareKey struct {
	Path string
	From string
	To   string
}

// CompareCache memoizes submodule compare results. It is unbounded; entries
// live for the lifetime of the cache. The host tool may share one cache
// across providers by injecting it with WithCompareCache.
type CompareCache struct {
	mu      sync.Mutex
	entries map[CompareKey][]provider.Diff
}

// NewCompareCache creates an empty compare cache.
func NewCompareCache() *CompareCache {
	return &CompareCache{entries: make(map[CompareKey][]provider.Diff)}
}

// Get returns the cached diffs for key, if present.
func (c *CompareCache) Get(key CompareKey) ([]provider.Diff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	diffs, ok := c.entries[key]
	return diffs, ok
}

// Put stores the diffs for key, replacing any previous entry.
func (c *CompareCache) Put(key CompareKey, diffs []provider.Diff) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = diffs
}

// Len returns the number of cached compares.
func (c *CompareCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
