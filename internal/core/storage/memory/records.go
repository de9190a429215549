package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/core/partition"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
)

type pairKey struct {
	userID    string
	productID string
}

// RecordStore is an in-memory storage.RecordStore.
// Pairs are spread over partition.Count lock stripes; an upsert holds its
// stripe for the whole find-mutate-write, so writes to one pair serialize
// while unrelated pairs proceed in parallel.
type RecordStore struct {
	stripes [partition.Count]sync.Mutex

	mu      sync.RWMutex
	records map[pairKey]*interaction.Record

	nowFn func() time.Time
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[pairKey]*interaction.Record),
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *RecordStore) Find(ctx context.Context, userID, productID string) (*interaction.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[pairKey{userID, productID}]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	found := *rec
	return &found, nil
}

func (s *RecordStore) Upsert(ctx context.Context, userID, productID string, mutate storage.Mutator) (*interaction.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	stripe := &s.stripes[partition.ForPair(userID, productID)]
	stripe.Lock()
	defer stripe.Unlock()

	key := pairKey{userID, productID}

	s.mu.RLock()
	current, exists := s.records[key]
	s.mu.RUnlock()

	var existing *interaction.Record
	if exists {
		snapshot := *current
		existing = &snapshot
	}

	next, err := mutate(existing)
	if err != nil {
		return nil, false, err
	}

	now := s.nowFn()
	next.UserID = userID
	next.ProductID = productID
	next.UpdatedAt = now
	if exists {
		next.CreatedAt = current.CreatedAt
	} else {
		next.CreatedAt = now
	}

	stored := next
	s.mu.Lock()
	s.records[key] = &stored
	s.mu.Unlock()

	return &next, !exists, nil
}

func (s *RecordStore) ListByUser(ctx context.Context, userID string, limit int) ([]*interaction.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var out []*interaction.Record
	for key, rec := range s.records {
		if key.userID != userID {
			continue
		}
		r := *rec
		out = append(out, &r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
