package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aevon-lab/storefront-signals/internal/catalog"
)

// ProductAdapter implements catalog.Source over the products table.
// It shares the connection pool of the interaction Adapter.
type ProductAdapter struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// NewProductAdapter creates a catalog source backed by PostgreSQL.
func NewProductAdapter(db *sql.DB, queryTimeout time.Duration) *ProductAdapter {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &ProductAdapter{db: db, queryTimeout: queryTimeout}
}

// Get returns the product or catalog.ErrProductNotFound.
func (a *ProductAdapter) Get(ctx context.Context, productID string) (*catalog.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, a.queryTimeout)
	defer cancel()

	var p catalog.Product
	err := a.db.QueryRowContext(ctx, queryGetProduct, productID).Scan(&p.ID, &p.Name, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}
