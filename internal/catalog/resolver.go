package catalog

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity is the default number of products to cache.
const DefaultCacheCapacity = 10000

// Resolver checks product existence with an LRU cache in front of a Source.
// Misses are not cached, so products added to the catalog become visible
// without a restart.
type Resolver struct {
	source Source
	cache  *LRUCache
	group  singleflight.Group // Dedupe concurrent lookups of the same id
}

// NewResolver creates a resolver with the given cache capacity.
func NewResolver(source Source, cacheCapacity int) *Resolver {
	if cacheCapacity <= 0 {
		cacheCapacity = DefaultCacheCapacity
	}
	return &Resolver{
		source: source,
		cache:  NewLRUCache(cacheCapacity),
	}
}

// Resolve returns the product or ErrProductNotFound.
func (r *Resolver) Resolve(ctx context.Context, productID string) (*Product, error) {
	if p := r.cache.Get(productID); p != nil {
		return p, nil
	}

	result, err, shared := r.group.Do(productID, func() (interface{}, error) {
		if p := r.cache.Get(productID); p != nil {
			return p, nil
		}

		p, err := r.source.Get(ctx, productID)
		if err != nil {
			return nil, err
		}

		r.cache.Put(p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		slog.Debug("[Catalog] Shared product lookup", "product_id", productID)
	}

	p := *result.(*Product)
	return &p, nil
}

// Invalidate drops a product from the cache.
func (r *Resolver) Invalidate(productID string) {
	r.cache.Invalidate(productID)
}

// Purge drops every cached product, so the next lookups see the current
// source contents.
func (r *Resolver) Purge() {
	r.cache.Purge()
}
