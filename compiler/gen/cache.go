package gen

import (
	"github.com/maypok86/otter"

	"github.com/syssam/sqlrepo/compiler/load"
)

// MappingCache memoizes table mappings by class name. Implementations
// must be safe for concurrent use.
type MappingCache interface {
	Get(load.QualifiedName) (*TableMapping, bool)
	Set(load.QualifiedName, *TableMapping) bool
}

// minCacheCapacity is the smallest capacity handed to otter. Its
// admission window is a tenth of the capacity, and below ten entries
// that window is empty and every Set is rejected.
const minCacheCapacity = 16

// OtterCache is a bounded MappingCache.
type OtterCache struct {
	c otter.Cache[load.QualifiedName, *TableMapping]
}

// NewMappingCache returns a cache holding up to capacity mappings.
// Capacities below 16 are raised to 16.
func NewMappingCache(capacity int) (*OtterCache, error) {
	if capacity <= 0 {
		return nil, NewConfigError("MappingCache", capacity, "capacity must be positive")
	}
	c, err := otter.MustBuilder[load.QualifiedName, *TableMapping](max(capacity, minCacheCapacity)).Build()
	if err != nil {
		return nil, err
	}
	return &OtterCache{c: c}, nil
}

// Get implements MappingCache.
func (o *OtterCache) Get(n load.QualifiedName) (*TableMapping, bool) {
	return o.c.Get(n)
}

// Set implements MappingCache. It reports whether otter admitted the
// mapping.
func (o *OtterCache) Set(n load.QualifiedName, t *TableMapping) bool {
	return o.c.Set(n, t)
}

// Close releases the cache.
func (o *OtterCache) Close() {
	o.c.Close()
}
