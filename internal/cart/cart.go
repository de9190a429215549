// Package cart holds shopping cart state as an explicit value updated by a
// pure reducer. Pricing and delivery calculation is injected.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.New("not enough items in stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrUnknownAction     = errors.New("unknown cart action")
)

// Item is one cart line. Lines are identified by product, color and size.
type Item struct {
	ClientID     string          `json:"clientId"`
	ProductID    string          `json:"product"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CountInStock int             `json:"countInStock"`
}

func (i Item) sameLine(o Item) bool {
	return i.ProductID == o.ProductID && i.Color == o.Color && i.Size == o.Size
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Pricing is the output of a PricingFunc.
type Pricing struct {
	ItemsPrice        decimal.Decimal     `json:"itemsPrice"`
	ShippingPrice     decimal.NullDecimal `json:"shippingPrice"`
	TaxPrice          decimal.NullDecimal `json:"taxPrice"`
	TotalPrice        decimal.Decimal     `json:"totalPrice"`
	DeliveryDateIndex *int                `json:"deliveryDateIndex,omitempty"`
}

// PricingInput is everything a PricingFunc may look at.
type PricingInput struct {
	Items             []Item
	ShippingAddress   *ShippingAddress
	DeliveryDateIndex *int
}

// PricingFunc computes prices and the chosen delivery option. It must not
// retain or modify the input.
type PricingFunc func(ctx context.Context, in PricingInput) (Pricing, error)

// State is the full cart.
type State struct {
	Items           []Item           `json:"items"`
	Pricing                          // recomputed on every item or delivery change
	PaymentMethod   string           `json:"paymentMethod,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// Quantity returns the total quantity of productID across all its lines.
func (s State) Quantity(productID string) int {
	n := 0
	for _, it := range s.Items {
		if it.ProductID == productID {
			n += it.Quantity
		}
	}
	return n
}

// SumPricing prices items at their unit price with no shipping or tax.
func SumPricing(_ context.Context, in PricingInput) (Pricing, error) {
	total := decimal.Zero
	for _, it := range in.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return Pricing{
		ItemsPrice:        total,
		TotalPrice:        total,
		DeliveryDateIndex: in.DeliveryDateIndex,
	}, nil
}
