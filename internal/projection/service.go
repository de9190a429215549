package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid interaction query")

// Service serves read access to aggregated interaction records.
type Service struct {
	store storage.RecordStore
}

// NewService creates a new projection service.
func NewService(store storage.RecordStore) *Service {
	return &Service{store: store}
}

// UserInteractions returns a user's records, most recently updated first,
// with a per-type summary of the returned page.
func (s *Service) UserInteractions(ctx context.Context, userID string, limit int) (*UserInteractionsResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidQuery)
	}
	if limit < 0 || limit > maxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, maxListLimit)
	}
	if limit == 0 {
		limit = defaultListLimit
	}

	records, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	if records == nil {
		records = []*interaction.Record{}
	}

	return &UserInteractionsResponse{
		UserID:       userID,
		Interactions: records,
		Summary:      summarize(records),
	}, nil
}

// Interaction returns the record for one pair or storage.ErrRecordNotFound.
func (s *Service) Interaction(ctx context.Context, userID, productID string) (*interaction.Record, error) {
	return s.store.Find(ctx, userID, productID)
}
