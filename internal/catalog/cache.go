package catalog

import (
	"container/list"
	"sync"
)

// LRUCache is a thread-safe LRU cache for products.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	order    *list.List
}

// NewLRUCache creates a new LRU cache with the given capacity.
func NewLRUCache(capacity int) *LRUCache {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a copy of the cached product. Returns nil if not found.
func (c *LRUCache) Get(productID string) *Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.cache[productID]
	if !exists {
		return nil
	}

	c.order.MoveToFront(elem)
	p := *elem.Value.(*Product)
	return &p
}

// Put adds a product, evicting the least recently used entry if full.
func (c *LRUCache) Put(product *Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := *product

	if elem, exists := c.cache[p.ID]; exists {
		c.order.MoveToFront(elem)
		elem.Value = &p
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.cache, oldest.Value.(*Product).ID)
			c.order.Remove(oldest)
		}
	}

	c.cache[p.ID] = c.order.PushFront(&p)
}

// Invalidate removes a product from the cache.
func (c *LRUCache) Invalidate(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.cache[productID]; exists {
		delete(c.cache, productID)
		c.order.Remove(elem)
	}
}

// Len returns the number of cached products.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every cached product.
func (c *LRUCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*list.Element)
	c.order.Init()
}
