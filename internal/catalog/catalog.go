// Package catalog resolves product ids against the storefront's product
// catalog. The catalog is owned elsewhere; this service only reads it.
package catalog

import (
	"context"
	"errors"
)

// ErrProductNotFound is returned when a product id is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// Product is the subset of catalog data the interaction engine needs.
type Product struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Source looks up products by id.
type Source interface {
	// Get returns the product or ErrProductNotFound.
	Get(ctx context.Context, productID string) (*Product, error)
}
