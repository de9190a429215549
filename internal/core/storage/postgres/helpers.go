package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/lib/pq"
)

const pqUniqueViolation pq.ErrorCode = "23505"

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans one user_interactions row selected with recordColumns.
// sql.ErrNoRows is returned unwrapped-compatible so callers can test for it.
func scanRecord(row scanner) (*interaction.Record, error) {
	var rec interaction.Record
	var sessionID, searchQuery sql.NullString

	err := row.Scan(
		&rec.UserID,
		&rec.ProductID,
		&rec.InteractionType,
		&rec.Value,
		&rec.ReviewStars,
		&sessionID,
		&searchQuery,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan interaction row: %w", err)
	}

	rec.SessionID = sessionID.String
	rec.SearchQuery = searchQuery.String
	return &rec, nil
}

// nullString maps "" to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
