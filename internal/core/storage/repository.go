package storage

import (
	"context"
	"errors"

	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
)

var (
	// ErrRecordNotFound is returned by Find when the pair has no record yet.
	ErrRecordNotFound = errors.New("interaction record not found")

	// ErrConstraintViolation is returned by Upsert when a concurrent writer
	// created the (user_id, product_id) record first. Callers retry the
	// upsert, which then observes the record and applies as an update.
	ErrConstraintViolation = errors.New("interaction record created concurrently")
)

// Mutator computes the next record state from the current one.
// existing is nil when the pair has no record.
type Mutator func(existing *interaction.Record) (interaction.Record, error)

// RecordStore persists one aggregated interaction record per (user, product).
type RecordStore interface {
	// Find returns the record for the pair or ErrRecordNotFound.
	Find(ctx context.Context, userID, productID string) (*interaction.Record, error)

	// Upsert runs find, mutate and write as one atomic unit for the pair.
	// created reports whether this call inserted the record.
	// Returns ErrConstraintViolation when it lost a concurrent create.
	Upsert(ctx context.Context, userID, productID string, mutate Mutator) (rec *interaction.Record, created bool, err error)

	// ListByUser returns a user's records, most recently updated first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*interaction.Record, error)
}
