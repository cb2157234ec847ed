package currency

import (
	"container/list"
	"sync"
	"time"
)

// ttlCache is a size-bounded LRU cache whose entries expire after ttl.
type ttlCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
}

type cacheEntry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newTTLCache[T any](maxSize int, ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

func (c *ttlCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(*cacheEntry[T])
	if c.now().After(entry.expiresAt) {
		delete(c.items, key)
		c.lru.Remove(elem)
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return entry.data, true
}

func (c *ttlCache[T]) set(key string, data T) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry[T]{key: key, data: data, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return
	}
	c.items[key] = c.lru.PushFront(entry)
	if c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		delete(c.items, oldest.Value.(*cacheEntry[T]).key)
		c.lru.Remove(oldest)
	}
}
