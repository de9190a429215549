package interaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the interaction type carried by an incoming event.
// Records only ever hold view, add_to_cart or purchase; review and search
// are folded into one of those by Merge.
type Kind string

const (
	KindView      Kind = "view"
	KindAddToCart Kind = "add_to_cart"
	KindPurchase  Kind = "purchase"
	KindReview    Kind = "review"
	KindSearch    Kind = "search"
)

// Kinds lists every event kind accepted at the ingestion boundary.
var Kinds = []Kind{KindView, KindAddToCart, KindPurchase, KindReview, KindSearch}

// Valid reports whether k is an accepted event kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// RecordType returns the record-level type this event kind folds into.
func (k Kind) RecordType() Kind {
	switch k {
	case KindSearch:
		return KindView
	case KindReview:
		return KindPurchase
	default:
		return k
	}
}

// Record is the aggregated engagement signal for one (user, product) pair.
type Record struct {
	UserID          string              `json:"userId"`
	ProductID       string              `json:"productId"`
	InteractionType Kind                `json:"interactionType"`
	Value           decimal.Decimal     `json:"value"`
	ReviewStars     decimal.NullDecimal `json:"reviewStars"`
	SessionID       string              `json:"sessionId,omitempty"`
	SearchQuery     string              `json:"searchQuery,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// Signal is the merge input derived from one validated event.
// Value and ReviewStars are optional; SessionID and SearchQuery are
// applied only when non-empty.
type Signal struct {
	Kind        Kind
	Value       decimal.NullDecimal
	ReviewStars decimal.NullDecimal
	SessionID   string
	SearchQuery string
}
