package cache

import (
	"fmt"
	"sort"
	"sync"

	"codechunk/internal/domain"
	"codechunk/internal/port"
)

// MemoryStore is an in-process CacheStore that evicts the least recently
// used entry once it holds maxSize entries.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry
	order   []string
	maxSize int
}

func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		entries: make(map[string]*domain.CacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

func (c *MemoryStore) Get(id string) (*domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrCacheMiss, id)
	}
	c.moveToEnd(id)

	return entry, nil
}

func (c *MemoryStore) Put(entry *domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.ID]; exists {
		c.entries[entry.ID] = entry
		c.moveToEnd(entry.ID)
		return nil
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[entry.ID] = entry
	c.order = append(c.order, entry.ID)
	return nil
}

func (c *MemoryStore) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	c.removeFromOrder(id)
	return nil
}

func (c *MemoryStore) IDs() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *MemoryStore) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryStore) Close() error {
	return nil
}

func (c *MemoryStore) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *MemoryStore) moveToEnd(id string) {
	c.removeFromOrder(id)
	c.order = append(c.order, id)
}

func (c *MemoryStore) removeFromOrder(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// TieredStore keeps hot entries in memory in front of a persistent store.
// Writes go to both; a memory miss is filled from the backing store.
type TieredStore struct {
	front *MemoryStore
	back  port.CacheStore
}

func NewTieredStore(front *MemoryStore, back port.CacheStore) *TieredStore {
	return &TieredStore{
		front: front,
		back:  back,
	}
}

func (t *TieredStore) Get(id string) (*domain.CacheEntry, error) {
	if entry, err := t.front.Get(id); err == nil {
		return entry, nil
	}

	entry, err := t.back.Get(id)
	if err != nil {
		return nil, err
	}

	_ = t.front.Put(entry)

	return entry, nil
}

func (t *TieredStore) Put(entry *domain.CacheEntry) error {
	if err := t.back.Put(entry); err != nil {
		return err
	}
	return t.front.Put(entry)
}

func (t *TieredStore) Delete(id string) error {
	if err := t.back.Delete(id); err != nil {
		return err
	}
	return t.front.Delete(id)
}

func (t *TieredStore) IDs() ([]string, error) {
	return t.back.IDs()
}

func (t *TieredStore) Close() error {
	return t.back.Close()
}
