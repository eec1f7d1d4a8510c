// Package cache provides day-scoped caching of entity history profiles.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/floorgang/floorscanner/internal/metrics"
	"github.com/floorgang/floorscanner/internal/models"
)

// ProfileKey represents a unique key for caching history profiles
type ProfileKey struct {
	Kind   models.EntityKind
	Entity string
	Stat   models.StatKey
	Day    string
}

// String returns string representation of profile key
func (k ProfileKey) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.Kind, k.Entity, k.Stat, k.Day)
}

// DayKey formats a date the way profile keys expect it
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ProfileCache provides in-memory caching for computed history profiles.
// Keys carry the scan day, so yesterday's profiles never answer today's scan.
type ProfileCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewProfileCache creates a new profile cache
func NewProfileCache(ttl time.Duration, maxSize int) *ProfileCache {
	return &ProfileCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached profile, nil on miss
func (pc *ProfileCache) Get(ctx context.Context, key ProfileKey) *models.HistoryProfile {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if result, found := pc.cache.Get(key.String()); found {
		if profile, ok := result.(*models.HistoryProfile); ok {
			pc.hitCount++
			pc.updateMetrics()
			return profile
		}
	}

	pc.missCount++
	pc.updateMetrics()
	return nil
}

// Set stores a profile in cache
func (pc *ProfileCache) Set(ctx context.Context, key ProfileKey, profile *models.HistoryProfile) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	// Check size limit
	if pc.cache.ItemCount() >= pc.maxSize {
		// Remove expired items first
		pc.cache.DeleteExpired()
	}

	pc.cache.Set(key.String(), profile, pc.ttl)
}

// InvalidateDay removes every cache entry for a specific scan day
func (pc *ProfileCache) InvalidateDay(ctx context.Context, day string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	// Cache key format: kind:entity:stat:day
	suffix := ":" + day
	for k := range pc.cache.Items() {
		if len(k) >= len(suffix) && k[len(k)-len(suffix):] == suffix {
			pc.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (pc *ProfileCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache statistics
func (pc *ProfileCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.statsLocked()
}

func (pc *ProfileCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// updateMetrics updates Prometheus metrics, caller holds the lock
func (pc *ProfileCache) updateMetrics() {
	_, _, ratio := pc.statsLocked()
	metrics.UpdateCacheHitRatio(ratio)
}

// ItemCount returns the number of items in cache
func (pc *ProfileCache) ItemCount() int {
	return pc.cache.ItemCount()
}
