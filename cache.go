package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// QueryCache is a TTL cache for computed analysis responses.
type QueryCache struct {
	mu    sync.RWMutex
	cache map[string]cacheItem
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		cache: make(map[string]cacheItem),
	}
}

func (c *QueryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheItem{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *QueryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.cache[key]
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

func (c *QueryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheItem)
}

func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// CleanExpired removes expired entries. Called periodically from main.
func (c *QueryCache) CleanExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.cache {
		if now.After(item.expiresAt) {
			delete(c.cache, key)
		}
	}
}

// generateCacheKey creates a deterministic cache key from an endpoint name
// and its parameters.
func generateCacheKey(endpoint string, params interface{}) string {
	data, _ := json.Marshal(struct {
		Endpoint string
		Params   interface{}
	}{
		Endpoint: endpoint,
		Params:   params,
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RateLimiter is a per-client token bucket. Tokens refill at ratePerMinute
// up to burst.
type RateLimiter struct {
	mu            sync.Mutex
	buckets       map[string]*tokenBucket
	ratePerMinute float64
	burst         float64
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

func NewRateLimiter(ratePerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		buckets:       make(map[string]*tokenBucket),
		ratePerMinute: float64(ratePerMinute),
		burst:         float64(burst),
	}
}

// Allow reports whether the client may make another request, consuming a
// token if so.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[clientID]
	if !ok {
		b = &tokenBucket{tokens: rl.burst, lastRefill: now}
		rl.buckets[clientID] = b
	}

	elapsed := now.Sub(b.lastRefill).Minutes()
	b.tokens += elapsed * rl.ratePerMinute
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
