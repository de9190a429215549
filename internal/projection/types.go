package projection

import (
	"time"

	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/shopspring/decimal"
)

// UserInteractionsResponse lists a user's aggregated records.
type UserInteractionsResponse struct {
	UserID       string                `json:"userId"`
	Interactions []*interaction.Record `json:"interactions"`
	Summary      Summary               `json:"summary"`
}

// Summary rolls a user's records up into per-type totals.
type Summary struct {
	Viewed            int                 `json:"viewed"`
	InCart            int                 `json:"inCart"`
	Purchased         int                 `json:"purchased"`
	CartQuantity      decimal.Decimal     `json:"cartQuantity"`
	PurchasedQuantity decimal.Decimal     `json:"purchasedQuantity"`
	AverageStars      decimal.NullDecimal `json:"averageStars"`
	LastActivity      *time.Time          `json:"lastActivity,omitempty"`
}
