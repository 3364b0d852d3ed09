// Package cache provides response caching for predictions.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/magajico/internal/metrics"
	"github.com/yourusername/magajico/internal/models"
)

// Key derives the cache key for a raw feature vector served by one trained model.
// Retraining changes the model ID, so entries from a previous snapshot are never hit.
func Key(features []float64, modelID uuid.UUID) string {
	h := sha256.New()
	var buf [8]byte
	for _, f := range features {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	h.Write(modelID[:])
	return hex.EncodeToString(h.Sum(nil))
}

// PredictionCache provides in-memory caching for prediction results
type PredictionCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   gocache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction
func (pc *PredictionCache) Get(key string) (*models.PredictionResult, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if result, found := pc.cache.Get(key); found {
		if pred, ok := result.(*models.PredictionResult); ok {
			pc.hitCount++
			metrics.RecordCacheHit()
			return pred, true
		}
	}

	pc.missCount++
	metrics.RecordCacheMiss()
	return nil, false
}

// Set stores a prediction in cache.
// When the cache is full after evicting expired entries the result is not stored.
func (pc *PredictionCache) Set(key string, prediction *models.PredictionResult) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.maxSize > 0 && pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}

	pc.cache.Set(key, prediction, pc.ttl)
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
