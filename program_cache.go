package dimensions

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a ProgramCache backed by go-cache. Entries expire
// after the configured TTL; a TTL of zero keeps them forever.
type MemoryProgramCache struct {
	c *gocache.Cache
}

// NewMemoryProgramCache constructs an in-memory cache with ttl expiry.
func NewMemoryProgramCache(ttl time.Duration) *MemoryProgramCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryProgramCache{c: gocache.New(ttl, time.Minute)}
}

// Get implements ProgramCache.
func (m *MemoryProgramCache) Get(key string) (any, bool) {
	return m.c.Get(key)
}

// Set implements ProgramCache.
func (m *MemoryProgramCache) Set(key string, value any) {
	m.c.SetDefault(key, value)
}

// Len returns the number of cached programs, expired ones included until the
// next cleanup.
func (m *MemoryProgramCache) Len() int {
	return m.c.ItemCount()
}
