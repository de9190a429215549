package v1

import (
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/shopspring/decimal"
)

// Event is one interaction signal emitted by a storefront action.
// It is consumed immediately by the ingestion service and never stored as-is.
type Event struct {
	// UserID identifies the shopper. REQUIRED.
	UserID string `json:"userId" validate:"required,max=256"`

	// ProductID must reference a product in the catalog at write time. REQUIRED.
	ProductID string `json:"productId" validate:"required,max=256"`

	// InteractionType is one of view, add_to_cart, purchase, review, search.
	InteractionType interaction.Kind `json:"interactionType" validate:"required,oneof=view add_to_cart purchase review search"`

	// Value is the quantity carried by add_to_cart and purchase events.
	// Views ignore it.
	Value decimal.NullDecimal `json:"value" validate:"omitempty,gte=0"`

	// ReviewStars is a 0-5 rating. Required for review events.
	ReviewStars decimal.NullDecimal `json:"reviewStars" validate:"omitempty,gte=0,lte=5"`

	// Category is the product category as seen by the client. It is never
	// persisted; ingestion only compares it with the catalog and logs drift.
	Category *string `json:"category,omitempty" validate:"omitempty,max=256"`

	SessionID   string `json:"sessionId,omitempty" validate:"max=256"`
	SearchQuery string `json:"searchQuery,omitempty" validate:"required_if=InteractionType search,max=512"`
}

// Validate checks required fields, enum ranges and numeric bounds.
// Returns a *ValidationError listing every failing field.
func (e *Event) Validate() error {
	fields := structFieldErrors(e)
	if e.InteractionType == interaction.KindReview && !e.ReviewStars.Valid {
		fields = append(fields, FieldError{
			Field:   "reviewStars",
			Rule:    "required_if",
			Message: "reviewStars is required for review events",
		})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Signal converts the event into merge engine input.
func (e *Event) Signal() interaction.Signal {
	return interaction.Signal{
		Kind:        e.InteractionType,
		Value:       e.Value,
		ReviewStars: e.ReviewStars,
		SessionID:   e.SessionID,
		SearchQuery: e.SearchQuery,
	}
}

// CategoryValue returns the optional category, or "" when the client sent none.
func (e *Event) CategoryValue() string {
	if e.Category == nil {
		return ""
	}
	return *e.Category
}
