// Package cache memoizes search responses for repeated identical queries.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/chordme/songsearch/internal/models"
)

// ResultCache is a TTL + LRU cache for search responses. Entries are owned by
// the cache: values going in and out are copied so callers never share or
// mutate cached state. Safe for concurrent use; writes are whole-value
// replacements, so overlapping writers for the same key are harmless.
type ResultCache struct {
	capacity int
	ttl      time.Duration
	mu       sync.Mutex
	entries  map[string]*list.Element
	lru      *list.List
}

type cacheEntry struct {
	key       string
	value     *models.SearchResponse
	expiresAt time.Time
}

// New creates a cache holding up to capacity entries, each valid for ttl.
func New(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Key builds the deterministic cache key for a search invocation. The scope
// user is part of the key so one caller's results can never be served to
// another.
func Key(normalizedQuery string, filters *models.SearchFilters, scope models.Scope, offset, limit int) string {
	var f models.SearchFilters
	if filters != nil {
		f = *filters
	}
	canonical := fmt.Sprintf("q=%s|genre=%s|key=%s|difficulty=%s|tempo=%d-%d|lang=%s|own=%t|user=%s|off=%d|lim=%d",
		normalizedQuery, f.Genre, f.Key, f.Difficulty, f.MinTempo, f.MaxTempo,
		f.Language, f.UserOnly, scope.UserID, offset, limit)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Get returns a copy of the cached response for key, if present and not
// expired. Expired entries are treated as absent and removed.
func (c *ResultCache) Get(key string) (*models.SearchResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.lru.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return cloneResponse(entry.value), true
}

// Set stores a copy of resp for key, evicting the oldest entry at capacity.
func (c *ResultCache) Set(key string, resp *models.SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value := cloneResponse(resp)
	expires := time.Now().Add(c.ttl)

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = expires
		return
	}

	entry := &cacheEntry{key: key, value: value, expiresAt: expires}
	elem := c.lru.PushFront(entry)
	c.entries[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Clear drops all entries. Intended for tests and admin use.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of entries, including any not yet expired-out.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func cloneResponse(resp *models.SearchResponse) *models.SearchResponse {
	if resp == nil {
		return nil
	}
	out := *resp
	out.Results = make([]*models.SearchResult, len(resp.Results))
	for i, r := range resp.Results {
		cp := *r
		cp.MatchedFields = append([]string(nil), r.MatchedFields...)
		out.Results[i] = &cp
	}
	return &out
}
