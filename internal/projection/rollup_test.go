package projection

import (
	"testing"
	"time"

	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stars := func(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

	records := []*interaction.Record{
		{ProductID: "p-1", InteractionType: interaction.KindView, Value: decimal.Zero, UpdatedAt: t0},
		{ProductID: "p-2", InteractionType: interaction.KindAddToCart, Value: decimal.NewFromInt(3), UpdatedAt: t0.Add(time.Minute)},
		{ProductID: "p-3", InteractionType: interaction.KindAddToCart, Value: decimal.NewFromInt(2), UpdatedAt: t0},
		{ProductID: "p-4", InteractionType: interaction.KindPurchase, Value: decimal.NewFromInt(1), ReviewStars: stars("4"), UpdatedAt: t0.Add(time.Hour)},
		{ProductID: "p-5", InteractionType: interaction.KindPurchase, Value: decimal.NewFromInt(2), ReviewStars: stars("5"), UpdatedAt: t0},
		{ProductID: "p-6", InteractionType: interaction.KindPurchase, Value: decimal.NewFromInt(1), UpdatedAt: t0},
	}

	s := summarize(records)
	require.Equal(t, 1, s.Viewed)
	require.Equal(t, 2, s.InCart)
	require.Equal(t, 3, s.Purchased)
	require.True(t, s.CartQuantity.Equal(decimal.NewFromInt(5)))
	require.True(t, s.PurchasedQuantity.Equal(decimal.NewFromInt(4)))
	require.True(t, s.AverageStars.Valid)
	require.True(t, s.AverageStars.Decimal.Equal(decimal.RequireFromString("4.5")))
	require.Equal(t, t0.Add(time.Hour), *s.LastActivity)
}

func TestSummarize_Empty(t *testing.T) {
	s := summarize(nil)
	require.Zero(t, s.Viewed+s.InCart+s.Purchased)
	require.True(t, s.CartQuantity.IsZero())
	require.False(t, s.AverageStars.Valid)
	require.Nil(t, s.LastActivity)
}
