package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	"github.com/aevon-lab/storefront-signals/internal/catalog"
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
	"github.com/aevon-lab/storefront-signals/internal/core/storage/memory"
	storagemocks "github.com/aevon-lab/storefront-signals/internal/mocks/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func qty(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestIngest_PurchaseIsSticky(t *testing.T) {
	store := memory.NewRecordStore()
	svc := NewService(store, testResolver(), Options{})
	ctx := context.Background()

	events := []v1.Event{
		{UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindPurchase, Value: qty(1)},
		{UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindView},
		{UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindAddToCart, Value: qty(4)},
		{UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindSearch, SearchQuery: "shoe"},
	}
	for i := range events {
		_, err := svc.Ingest(ctx, &events[i])
		require.NoError(t, err)
	}

	rec, err := store.Find(ctx, "u-1", "p-1")
	require.NoError(t, err)
	require.Equal(t, interaction.KindPurchase, rec.InteractionType)
	require.True(t, rec.Value.Equal(decimal.NewFromInt(1)))
	require.Equal(t, "shoe", rec.SearchQuery)
}

func TestIngest_ReviewSetsStarsWithoutAddingQuantity(t *testing.T) {
	store := memory.NewRecordStore()
	svc := NewService(store, testResolver(), Options{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &v1.Event{UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindPurchase, Value: qty(2)})
	require.NoError(t, err)

	rec, err := svc.Ingest(ctx, &v1.Event{
		UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindReview,
		ReviewStars: decimal.NewNullDecimal(decimal.RequireFromString("4.5")),
	})
	require.NoError(t, err)
	require.Equal(t, interaction.KindPurchase, rec.InteractionType)
	require.True(t, rec.Value.Equal(decimal.NewFromInt(2)))
	require.True(t, rec.ReviewStars.Decimal.Equal(decimal.RequireFromString("4.5")))
}

func TestIngest_CategoryDriftIsNotAnError(t *testing.T) {
	svc := NewService(memory.NewRecordStore(), testResolver(), Options{})
	category := "hats"

	rec, err := svc.Ingest(context.Background(), &v1.Event{
		UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindView, Category: &category,
	})
	require.NoError(t, err)
	require.Equal(t, interaction.KindView, rec.InteractionType)
}

func TestIngest_ConcurrentFirstAddToCart(t *testing.T) {
	store := memory.NewRecordStore()
	svc := NewService(store, testResolver(), Options{})

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Ingest(context.Background(), &v1.Event{
				UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindAddToCart, Value: qty(2),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, store.Len())
	rec, err := store.Find(context.Background(), "u-1", "p-1")
	require.NoError(t, err)
	require.True(t, rec.Value.Equal(decimal.NewFromInt(2*writers)), "got %s", rec.Value)
}

func TestIngest_RetriesLostCreateAsUpdate(t *testing.T) {
	existing := &interaction.Record{UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindAddToCart, Value: decimal.NewFromInt(3)}

	store := storagemocks.NewRecordStore(t)
	store.EXPECT().
		Upsert(mock.Anything, "u-1", "p-1", mock.Anything).
		Return(nil, false, storage.ErrConstraintViolation).
		Once()
	store.EXPECT().
		Upsert(mock.Anything, "u-1", "p-1", mock.Anything).
		RunAndReturn(func(ctx context.Context, userID, productID string, mutate storage.Mutator) (*interaction.Record, bool, error) {
			next, err := mutate(existing)
			return &next, false, err
		}).
		Once()

	svc := NewService(store, testResolver(), Options{})
	rec, err := svc.Ingest(context.Background(), &v1.Event{
		UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindAddToCart, Value: qty(2),
	})
	require.NoError(t, err)
	require.True(t, rec.Value.Equal(decimal.NewFromInt(5)))
}

func TestIngest_RetriesExhausted(t *testing.T) {
	store := storagemocks.NewRecordStore(t)
	store.EXPECT().
		Upsert(mock.Anything, "u-1", "p-1", mock.Anything).
		Return(nil, false, storage.ErrConstraintViolation).
		Times(2)

	svc := NewService(store, testResolver(), Options{MaxUpsertAttempts: 2})
	_, err := svc.Ingest(context.Background(), &v1.Event{
		UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindView,
	})
	require.ErrorIs(t, err, ErrPersistFailed)
	require.ErrorIs(t, err, storage.ErrConstraintViolation)
}

func TestIngest_CatalogFailure(t *testing.T) {
	boom := errors.New("catalog down")
	resolver := catalog.NewResolver(failingSource{err: boom}, 4)

	svc := NewService(storagemocks.NewRecordStore(t), resolver, Options{})
	_, err := svc.Ingest(context.Background(), &v1.Event{
		UserID: "u-1", ProductID: "p-1", InteractionType: interaction.KindView,
	})
	require.ErrorIs(t, err, ErrCatalogUnavailable)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, catalog.ErrProductNotFound)
}

type failingSource struct{ err error }

func (s failingSource) Get(ctx context.Context, productID string) (*catalog.Product, error) {
	return nil, s.err
}

func TestIngestPurchaseBatch_LineIsolation(t *testing.T) {
	store := memory.NewRecordStore()
	svc := NewService(store, testResolver(), Options{BatchConcurrency: 2})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &v1.Event{UserID: "u-1", ProductID: "p-2", InteractionType: interaction.KindAddToCart, Value: qty(1)})
	require.NoError(t, err)

	results, err := svc.IngestPurchaseBatch(ctx, &v1.PurchaseBatchRequest{
		UserID: "u-1",
		Products: []v1.PurchaseLine{
			{ProductID: "p-1", Value: qty(2)},
			{ProductID: "p-missing"},
			{ProductID: "p-2"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []v1.LineResult{
		{ProductID: "p-1", Status: v1.LineStatusCreated},
		{ProductID: "p-missing", Status: v1.LineStatusError, Message: "Product not found"},
		{ProductID: "p-2", Status: v1.LineStatusUpdated},
	}, results)

	rec, err := store.Find(ctx, "u-1", "p-1")
	require.NoError(t, err)
	require.Equal(t, interaction.KindPurchase, rec.InteractionType)
	require.True(t, rec.Value.Equal(decimal.NewFromInt(2)))

	rec, err = store.Find(ctx, "u-1", "p-2")
	require.NoError(t, err)
	require.Equal(t, interaction.KindPurchase, rec.InteractionType)
	require.True(t, rec.Value.Equal(decimal.NewFromInt(1)))

	_, err = store.Find(ctx, "u-1", "p-missing")
	require.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestIngestPurchaseBatch_StoreFailureIsPerLine(t *testing.T) {
	store := storagemocks.NewRecordStore(t)
	store.EXPECT().
		Upsert(mock.Anything, "u-1", "p-1", mock.Anything).
		Return(nil, false, errors.New("disk full")).
		Once()
	store.EXPECT().
		Upsert(mock.Anything, "u-1", "p-2", mock.Anything).
		RunAndReturn(func(ctx context.Context, userID, productID string, mutate storage.Mutator) (*interaction.Record, bool, error) {
			next, err := mutate(nil)
			return &next, true, err
		}).
		Once()

	svc := NewService(store, testResolver(), Options{})
	results, err := svc.IngestPurchaseBatch(context.Background(), &v1.PurchaseBatchRequest{
		UserID:   "u-1",
		Products: []v1.PurchaseLine{{ProductID: "p-1"}, {ProductID: "p-2"}},
	})
	require.NoError(t, err)
	require.Equal(t, v1.LineResult{ProductID: "p-1", Status: v1.LineStatusError, Message: "Failed to persist interaction"}, results[0])
	require.Equal(t, v1.LineResult{ProductID: "p-2", Status: v1.LineStatusCreated}, results[1])
}

func TestIngestPurchaseBatch_TooManyLines(t *testing.T) {
	svc := NewService(storagemocks.NewRecordStore(t), testResolver(), Options{MaxBatchLines: 1})

	_, err := svc.IngestPurchaseBatch(context.Background(), &v1.PurchaseBatchRequest{
		UserID:   "u-1",
		Products: []v1.PurchaseLine{{ProductID: "p-1"}, {ProductID: "p-2"}},
	})
	var verr *v1.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "products", verr.Fields[0].Field)
}
