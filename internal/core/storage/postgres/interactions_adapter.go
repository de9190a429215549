package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
)

// Find returns the aggregated record for (userID, productID).
// Returns storage.ErrRecordNotFound when the pair has none.
func (a *Adapter) Find(ctx context.Context, userID, productID string) (*interaction.Record, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rec, err := scanRecord(a.stmtFindRecord.QueryRowContext(ctx, userID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Upsert applies mutate to the pair's record inside one transaction.
//
// An existing row is locked with SELECT ... FOR UPDATE, so concurrent updates
// to the same pair serialize. When no row exists the mutated record is
// inserted; if another transaction inserted first, the unique constraint
// rejects the write and storage.ErrConstraintViolation is returned for the
// caller to retry.
func (a *Adapter) Upsert(ctx context.Context, userID, productID string, mutate storage.Mutator) (*interaction.Record, bool, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	existing, err := scanRecord(tx.QueryRowContext(ctx, querySelectRecordForUpdate, userID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		existing = nil
	} else if err != nil {
		return nil, false, err
	}

	next, err := mutate(existing)
	if err != nil {
		return nil, false, err
	}
	next.UserID = userID
	next.ProductID = productID

	query := queryUpdateRecord
	if existing == nil {
		query = queryInsertRecord
	}

	err = tx.QueryRowContext(ctx, query,
		userID,
		productID,
		next.InteractionType,
		next.Value,
		next.ReviewStars,
		nullString(next.SessionID),
		nullString(next.SearchQuery),
	).Scan(&next.CreatedAt, &next.UpdatedAt)
	if err != nil {
		if existing == nil && isUniqueViolation(err) {
			slog.Debug("[Postgres] Lost create race",
				"user_id", userID,
				"product_id", productID)
			return nil, false, storage.ErrConstraintViolation
		}
		return nil, false, fmt.Errorf("failed to write interaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, false, storage.ErrConstraintViolation
		}
		return nil, false, fmt.Errorf("failed to commit upsert transaction: %w", err)
	}

	slog.Debug("[Postgres] Upserted interaction record",
		"user_id", userID,
		"product_id", productID,
		"interaction_type", next.InteractionType,
		"created", existing == nil)

	return &next, existing == nil, nil
}

// ListByUser returns up to limit records for userID, most recently updated first.
func (a *Adapter) ListByUser(ctx context.Context, userID string, limit int) ([]*interaction.Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rows, err := a.stmtListByUser.QueryContext(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction records: %w", err)
	}
	defer rows.Close()

	records := make([]*interaction.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction records: %w", err)
	}

	return records, nil
}
