package cache

import (
	"sync"
	"time"

	"yield-farm-api/internal/llama"
)

// ListingsCache кеш для списков пулов из внешнего фида
type ListingsCache struct {
	listings []llama.ListedPool
	mu       sync.RWMutex
	ttl      time.Duration
	lastUp   time.Time
}

// NewListingsCache создает новый кеш
func NewListingsCache(ttl time.Duration) *ListingsCache {
	return &ListingsCache{
		ttl: ttl,
	}
}

// Set сохраняет списки в кеш
func (c *ListingsCache) Set(listings []llama.ListedPool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listings = listings
	c.lastUp = time.Now()
}

// Get возвращает списки из кеша, если они актуальны
func (c *ListingsCache) Get() ([]llama.ListedPool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Проверяем, не истек ли TTL
	if time.Since(c.lastUp) > c.ttl {
		return nil, false
	}

	// Возвращаем копию, чтобы избежать race condition
	listingsCopy := make([]llama.ListedPool, len(c.listings))
	copy(listingsCopy, c.listings)

	return listingsCopy, true
}

// Clear очищает кеш
func (c *ListingsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listings = nil
	c.lastUp = time.Time{}
}

// IsValid проверяет, актуален ли кеш
func (c *ListingsCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return time.Since(c.lastUp) <= c.ttl && len(c.listings) > 0
}
