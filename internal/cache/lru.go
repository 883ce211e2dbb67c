// Package cache provides in-memory TTL+LRU decorators for the place-lookup
// and forecast providers.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LRU is a thread-safe least-recently-used cache whose entries also expire
// after a fixed TTL.
type LRU[V any] struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry[V]
	head    *entry[V] // most recently used
	tail    *entry[V] // least recently used
}

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
	prev    *entry[V]
	next    *entry[V]
}

// NewLRU creates a cache holding at most maxEntries values for ttl each.
// A nil clock uses real time.
func NewLRU[V any](maxEntries int, ttl time.Duration, clock clockwork.Clock) *LRU[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &LRU[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry[V]),
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Put stores value under key, evicting the least recently used entry when full.
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Len reports the number of stored entries, expired or not.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *LRU[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev, e.next = nil, nil
}

func (c *LRU[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
