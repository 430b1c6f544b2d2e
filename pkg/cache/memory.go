package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps entries in process memory. It suits a single server
// process without Redis; entries are lost on restart.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns a copy of the entry for key. Expired entries are dropped.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.expired(e) {
		c.mu.Lock()
		// A Set may have replaced the entry since the read lock was released.
		if cur, ok := c.entries[key]; ok && c.expired(cur) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

func (c *MemoryCache) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

// Set stores a copy of data. A ttl of zero or less never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// NullCache stores nothing; every Get is a miss. Used for --no-cache.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error { return nil }
func (*NullCache) Close() error { return nil }

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*NullCache)(nil)
)
