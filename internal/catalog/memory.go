package catalog

import (
	"context"
	"sync"
)

// MemorySource is an in-memory Source. Useful for testing and development.
type MemorySource struct {
	mu       sync.RWMutex
	products map[string]*Product
}

// NewMemorySource creates a source seeded with products.
func NewMemorySource(products ...Product) *MemorySource {
	s := &MemorySource{products: make(map[string]*Product, len(products))}
	for _, p := range products {
		s.Put(p)
	}
	return s
}

// Put adds or replaces a product.
func (s *MemorySource) Put(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

func (s *MemorySource) Get(ctx context.Context, productID string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.products[productID]
	if !exists {
		return nil, ErrProductNotFound
	}

	product := *p
	return &product, nil
}
