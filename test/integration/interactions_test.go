//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	"github.com/aevon-lab/storefront-signals/internal/cart"
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/emitter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(n int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(n))
}

func TestInteractions_MergeRulesOverHTTP(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	ctx := context.Background()
	track := func(kind interaction.Kind, value decimal.NullDecimal) *interaction.Record {
		rec, err := h.tracker.Track(ctx, &v1.Event{
			UserID:          "u-merge",
			ProductID:       "p-shoe",
			InteractionType: kind,
			Value:           value,
		})
		require.NoError(t, err)
		return rec
	}

	rec := track(interaction.KindAddToCart, qty(2))
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(2)))

	rec = track(interaction.KindAddToCart, qty(3))
	assert.Equal(t, interaction.KindAddToCart, rec.InteractionType)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(5)))

	rec = track(interaction.KindPurchase, qty(1))
	assert.Equal(t, interaction.KindPurchase, rec.InteractionType)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(1)))

	rec = track(interaction.KindView, decimal.NullDecimal{})
	assert.Equal(t, interaction.KindPurchase, rec.InteractionType, "purchase is never downgraded")
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(1)))

	rec = track(interaction.KindPurchase, qty(2))
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(3)))

	assert.Equal(t, 1, countRecords(t, h.db, "u-merge", "p-shoe"))
}

func TestInteractions_UnknownProduct(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	_, err := h.tracker.Track(context.Background(), &v1.Event{
		UserID:          "u1",
		ProductID:       "p-missing",
		InteractionType: interaction.KindView,
	})

	var apiErr *emitter.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, 0, countRecords(t, h.db, "u1", "p-missing"))
}

func TestInteractions_ConcurrentFirstAddToCart(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	const writers = 20
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.tracker.Track(ctx, &v1.Event{
				UserID:          "u-race",
				ProductID:       "p-mug",
				InteractionType: interaction.KindAddToCart,
				Value:           qty(2),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, countRecords(t, h.db, "u-race", "p-mug"))

	var value decimal.Decimal
	require.NoError(t, h.db.QueryRow(
		`SELECT value FROM user_interactions WHERE user_id = $1 AND product_id = $2`, "u-race", "p-mug",
	).Scan(&value))
	assert.True(t, value.Equal(decimal.NewFromInt(2*writers)), "got %s", value)
}

func TestInteractions_PurchaseBatchIsolatesLines(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	results, err := h.tracker.TrackPurchases(context.Background(), &v1.PurchaseBatchRequest{
		UserID: "u-batch",
		Products: []v1.PurchaseLine{
			{ProductID: "p-lamp", Value: qty(1)},
			{ProductID: "p-missing", Value: qty(1)},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, v1.LineStatusCreated, results[0].Status)
	assert.Equal(t, v1.LineStatusError, results[1].Status)
	assert.Equal(t, 1, countRecords(t, h.db, "u-batch", "p-lamp"))
	assert.Equal(t, 0, countRecords(t, h.db, "u-batch", "p-missing"))
}

func TestInteractions_CartCheckoutThroughEmitter(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	em := emitter.New(h.tracker, emitter.Options{DebounceWindow: 10 * time.Millisecond})
	session := cart.NewSession("u-cart", nil, em)
	ctx := context.Background()

	shoe := cart.Item{ProductID: "p-shoe", Category: "shoes", Price: decimal.NewFromInt(50), CountInStock: 10}
	_, err := session.Dispatch(ctx, cart.AddItem{Item: shoe, Quantity: 2})
	require.NoError(t, err)
	_, err = session.Dispatch(ctx, cart.UpdateItem{Item: shoe, Quantity: 3})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		rec, err := h.adapter.Find(ctx, "u-cart", "p-shoe")
		return err == nil && rec.Value.Equal(decimal.NewFromInt(3))
	}, 5*time.Second, 50*time.Millisecond)

	_, err = session.ConfirmPayment(ctx)
	require.NoError(t, err)
	em.Close()

	rec, err := h.adapter.Find(ctx, "u-cart", "p-shoe")
	require.NoError(t, err)
	assert.Equal(t, interaction.KindPurchase, rec.InteractionType)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(3)))
	assert.Empty(t, session.State().Items)
}
