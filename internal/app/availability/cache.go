package availability

import (
	"sync"
	"time"

	"booking-api/internal/domain/booking"
	"booking-api/internal/ports"
)

type cacheKey struct {
	hotelID  int64
	checkIn  string
	checkOut string
}

type cacheEntry struct {
	quotes  []booking.Quote
	expires time.Time
}

// quoteCache memoizes search results by exact request value. Concurrent
// population is safe; a race costs at most one redundant recomputation.
// Entries expire after the TTL since underlying rates can change.
type quoteCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

func newQuoteCache(ttl time.Duration) *quoteCache {
	return &quoteCache{ttl: ttl, entries: make(map[cacheKey]cacheEntry)}
}

func keyOf(req ports.SearchRequest) cacheKey {
	return cacheKey{hotelID: req.HotelID, checkIn: req.CheckIn.String(), checkOut: req.CheckOut.String()}
}

func (c *quoteCache) get(req ports.SearchRequest) ([]booking.Quote, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[keyOf(req)]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(c.entries, keyOf(req))
		return nil, false
	}
	return entry.quotes, true
}

func (c *quoteCache) put(req ports.SearchRequest, quotes []booking.Quote) {
	if c.ttl <= 0 {
		return
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	// lazy sweep keeps the map from accumulating stale windows
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
	c.entries[keyOf(req)] = cacheEntry{quotes: quotes, expires: now.Add(c.ttl)}
}
