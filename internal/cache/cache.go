package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey builds a cache key for a namespace ("annotate", "similarity")
// from the given parts
func CacheKey(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "quotescan:v1:" + namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by the settings: a layered memory+disk
// cache, or nil when caching is disabled
func New(enabled bool, dir string, memoryTTL, diskTTL time.Duration) Cache {
	if !enabled {
		return nil
	}
	if dir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(memoryTTL, dir, diskTTL)
}

// Stats counts cache lookups since creation
type Stats struct {
	Hits     int64 `json:"hits"`      // Served from memory
	DiskHits int64 `json:"disk_hits"` // Served from disk and promoted to memory
	Misses   int64 `json:"misses"`
}

// HitRate returns the share of lookups served from any layer
func (s Stats) HitRate() float64 {
	total := s.Hits + s.DiskHits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits+s.DiskHits) / float64(total)
}

// StatsOf returns c's lookup counters if it keeps any
func StatsOf(c Cache) (Stats, bool) {
	r, ok := c.(interface{ Stats() Stats })
	if !ok {
		return Stats{}, false
	}
	return r.Stats(), true
}
