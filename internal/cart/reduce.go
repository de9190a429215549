package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Action is a cart mutation handled by Reduce.
type Action interface {
	isAction()
}

// AddItem adds Quantity units of Item, merging into an existing line.
type AddItem struct {
	Item     Item
	Quantity int
}

// UpdateItem sets the quantity of an existing line. Unknown lines are ignored.
type UpdateItem struct {
	Item     Item
	Quantity int
}

// RemoveItem drops a line.
type RemoveItem struct {
	Item Item
}

type SetShippingAddress struct {
	Address ShippingAddress
}

type SetPaymentMethod struct {
	Method string
}

type SetDeliveryDateIndex struct {
	Index int
}

// Clear empties the cart, keeping address and payment method.
type Clear struct{}

func (AddItem) isAction()              {}
func (UpdateItem) isAction()           {}
func (RemoveItem) isAction()           {}
func (SetShippingAddress) isAction()   {}
func (SetPaymentMethod) isAction()     {}
func (SetDeliveryDateIndex) isAction() {}
func (Clear) isAction()                {}

// Reduce returns the state after applying a. The input state is never
// modified. pricer runs whenever items, address or delivery option change;
// a nil pricer uses SumPricing.
func Reduce(ctx context.Context, s State, a Action, pricer PricingFunc) (State, error) {
	if pricer == nil {
		pricer = SumPricing
	}
	next := s
	next.Items = append([]Item(nil), s.Items...)
	deliveryIndex := s.DeliveryDateIndex

	switch act := a.(type) {
	case AddItem:
		if act.Quantity <= 0 {
			return s, ErrInvalidQuantity
		}
		idx := indexOf(next.Items, act.Item)
		if idx >= 0 {
			existing := next.Items[idx]
			if existing.CountInStock < existing.Quantity+act.Quantity {
				return s, ErrInsufficientStock
			}
			existing.Quantity += act.Quantity
			next.Items[idx] = existing
		} else {
			if act.Item.CountInStock < act.Quantity {
				return s, ErrInsufficientStock
			}
			item := act.Item
			item.Quantity = act.Quantity
			if item.ClientID == "" {
				item.ClientID = uuid.NewString()
			}
			next.Items = append(next.Items, item)
		}

	case UpdateItem:
		if act.Quantity <= 0 {
			return s, ErrInvalidQuantity
		}
		idx := indexOf(next.Items, act.Item)
		if idx < 0 {
			return s, nil
		}
		if next.Items[idx].CountInStock < act.Quantity {
			return s, ErrInsufficientStock
		}
		next.Items[idx].Quantity = act.Quantity

	case RemoveItem:
		idx := indexOf(next.Items, act.Item)
		if idx < 0 {
			return s, nil
		}
		next.Items = append(next.Items[:idx], next.Items[idx+1:]...)

	case SetShippingAddress:
		addr := act.Address
		next.ShippingAddress = &addr

	case SetPaymentMethod:
		next.PaymentMethod = act.Method
		return next, nil

	case SetDeliveryDateIndex:
		idx := act.Index
		deliveryIndex = &idx

	case Clear:
		next.Items = []Item{}

	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}

	pricing, err := pricer(ctx, PricingInput{
		Items:             append([]Item(nil), next.Items...),
		ShippingAddress:   next.ShippingAddress,
		DeliveryDateIndex: deliveryIndex,
	})
	if err != nil {
		return s, fmt.Errorf("failed to price cart: %w", err)
	}
	next.Pricing = pricing
	return next, nil
}

func indexOf(items []Item, target Item) int {
	for i, it := range items {
		if it.sameLine(target) {
			return i
		}
	}
	return -1
}
