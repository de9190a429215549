package v1

import (
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/shopspring/decimal"
)

// Line statuses reported by the purchase batch endpoint.
const (
	LineStatusCreated = "created"
	LineStatusUpdated = "updated"
	LineStatusError   = "error"
)

// PurchaseBatchRequest records every line item of a completed order at once.
// Lines are validated individually so one bad line never rejects the batch.
type PurchaseBatchRequest struct {
	UserID   string         `json:"userId" validate:"required,max=256"`
	Products []PurchaseLine `json:"products" validate:"required,min=1"`
}

// PurchaseLine is one purchased product. Value defaults to 1 when absent.
type PurchaseLine struct {
	ProductID string              `json:"productId" validate:"required,max=256"`
	Value     decimal.NullDecimal `json:"value" validate:"omitempty,gte=0"`
}

// LineResult is the per-line outcome of a purchase batch.
type LineResult struct {
	ProductID string `json:"productId"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// Validate checks the batch envelope only.
func (r *PurchaseBatchRequest) Validate() error {
	if fields := structFieldErrors(r); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate checks a single line.
func (l *PurchaseLine) Validate() error {
	if fields := structFieldErrors(l); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Event expands a batch line into a purchase event for userID.
func (l *PurchaseLine) Event(userID string) *Event {
	return &Event{
		UserID:          userID,
		ProductID:       l.ProductID,
		InteractionType: interaction.KindPurchase,
		Value:           l.Value,
	}
}
