package projection

import (
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/shopspring/decimal"
)

// starsPrecision is the number of decimal places kept for averaged ratings.
const starsPrecision = 2

// summarize rolls records up into counts and quantity totals per record type.
// Average stars cover only rated purchases.
func summarize(records []*interaction.Record) Summary {
	summary := Summary{
		CartQuantity:      decimal.Zero,
		PurchasedQuantity: decimal.Zero,
	}

	starsTotal := decimal.Zero
	rated := 0

	for _, rec := range records {
		switch rec.InteractionType {
		case interaction.KindView:
			summary.Viewed++
		case interaction.KindAddToCart:
			summary.InCart++
			summary.CartQuantity = summary.CartQuantity.Add(rec.Value)
		case interaction.KindPurchase:
			summary.Purchased++
			summary.PurchasedQuantity = summary.PurchasedQuantity.Add(rec.Value)
			if rec.ReviewStars.Valid {
				starsTotal = starsTotal.Add(rec.ReviewStars.Decimal)
				rated++
			}
		}

		if summary.LastActivity == nil || rec.UpdatedAt.After(*summary.LastActivity) {
			updated := rec.UpdatedAt
			summary.LastActivity = &updated
		}
	}

	if rated > 0 {
		avg := starsTotal.DivRound(decimal.NewFromInt(int64(rated)), starsPrecision)
		summary.AverageStars = decimal.NewNullDecimal(avg)
	}

	return summary
}
