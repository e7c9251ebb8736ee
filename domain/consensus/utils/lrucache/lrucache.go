package lrucache

import (
	"container/list"

	"github.com/Chia-Network/chia-blockchain-sub022/domain/consensus/model/externalapi"
)

// LRUCache is a least-recently-used cache from DomainHash keys to arbitrary
// values. Eviction is strict LRU: Get refreshes recency. The cache is not
// safe for concurrent use; callers that share one wrap it in a lock.
type LRUCache struct {
	capacity int
	entries  map[externalapi.DomainHash]*list.Element
	order    *list.List
}

type entry struct {
	key   externalapi.DomainHash
	value interface{}
}

// New creates a new LRUCache with the given fixed capacity
func New(capacity int, preallocate bool) *LRUCache {
	var entries map[externalapi.DomainHash]*list.Element
	if preallocate {
		entries = make(map[externalapi.DomainHash]*list.Element, capacity+1)
	} else {
		entries = make(map[externalapi.DomainHash]*list.Element)
	}
	return &LRUCache{
		capacity: capacity,
		entries:  entries,
		order:    list.New(),
	}
}

// Add adds an entry to the LRUCache, evicting the least recently used entry
// if the cache is full
func (c *LRUCache) Add(key *externalapi.DomainHash, value interface{}) {
	if element, ok := c.entries[*key]; ok {
		element.Value.(*entry).value = value
		c.order.MoveToFront(element)
		return
	}

	element := c.order.PushFront(&entry{key: *key, value: value})
	c.entries[*key] = element

	if c.order.Len() > c.capacity {
		c.evict()
	}
}

// Get returns the entry for the given key, or (nil, false) otherwise, and
// marks it as most recently used
func (c *LRUCache) Get(key *externalapi.DomainHash) (interface{}, bool) {
	element, ok := c.entries[*key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*entry).value, true
}

// Has returns whether the LRUCache contains the given key
func (c *LRUCache) Has(key *externalapi.DomainHash) bool {
	_, ok := c.entries[*key]
	return ok
}

// Remove removes the entry for the given key. Does nothing if
// the entry does not exist
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	element, ok := c.entries[*key]
	if !ok {
		return
	}
	c.order.Remove(element)
	delete(c.entries, *key)
}

// Len returns the number of entries currently in the cache
func (c *LRUCache) Len() int {
	return c.order.Len()
}

func (c *LRUCache) evict() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.entries, oldest.Value.(*entry).key)
}
