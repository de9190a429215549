package cart

import (
	"context"
	"errors"
	"sync"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned by ConfirmPayment when there is nothing to buy.
var ErrEmptyCart = errors.New("cart is empty")

// Tracker receives best-effort interaction signals for cart changes.
// *emitter.Emitter implements it.
type Tracker interface {
	AddToCart(userID, productID, category string, quantity decimal.Decimal)
	RemoveFromCart(userID, productID string)
	Purchase(userID string, lines []v1.PurchaseLine)
}

// Session is one shopper's cart. Every successful mutation is tracked;
// tracking never fails or rolls back a mutation.
type Session struct {
	mu      sync.Mutex
	userID  string
	state   State
	pricer  PricingFunc
	tracker Tracker
}

// NewSession creates an empty cart. An empty userID disables tracking;
// tracker may be nil.
func NewSession(userID string, pricer PricingFunc, tracker Tracker) *Session {
	return &Session{
		userID:  userID,
		state:   State{Items: []Item{}},
		pricer:  pricer,
		tracker: tracker,
	}
}

// State returns a snapshot of the cart.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state
	snapshot.Items = append([]Item(nil), s.state.Items...)
	return snapshot
}

// Dispatch applies a to the cart and emits the matching signal.
func (s *Session) Dispatch(ctx context.Context, a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next, err := Reduce(ctx, prev, a, s.pricer)
	if err != nil {
		return prev, err
	}
	s.state = next
	s.track(prev, next, a)
	return next, nil
}

// ConfirmPayment records one purchase batch covering every line, then
// empties the cart.
func (s *Session) ConfirmPayment(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.Items) == 0 {
		return s.state, ErrEmptyCart
	}
	lines := purchaseLines(s.state.Items)

	next, err := Reduce(ctx, s.state, Clear{}, s.pricer)
	if err != nil {
		return s.state, err
	}
	s.state = next

	if s.tracking() {
		s.tracker.Purchase(s.userID, lines)
	}
	return next, nil
}

func (s *Session) tracking() bool {
	return s.tracker != nil && s.userID != ""
}

func (s *Session) track(prev, next State, a Action) {
	if !s.tracking() {
		return
	}
	switch act := a.(type) {
	case AddItem:
		s.tracker.AddToCart(s.userID, act.Item.ProductID, act.Item.Category, decimal.NewFromInt(int64(act.Quantity)))
	case UpdateItem:
		delta := lineQuantity(next, act.Item) - lineQuantity(prev, act.Item)
		if delta > 0 {
			s.tracker.AddToCart(s.userID, act.Item.ProductID, act.Item.Category, decimal.NewFromInt(int64(delta)))
		}
	case RemoveItem:
		// Another variant of the product may still be in the cart.
		if indexOf(prev.Items, act.Item) >= 0 && next.Quantity(act.Item.ProductID) == 0 {
			s.tracker.RemoveFromCart(s.userID, act.Item.ProductID)
		}
	}
}

func lineQuantity(s State, target Item) int {
	if idx := indexOf(s.Items, target); idx >= 0 {
		return s.Items[idx].Quantity
	}
	return 0
}

// purchaseLines sums quantities per product, keeping first-seen order.
func purchaseLines(items []Item) []v1.PurchaseLine {
	totals := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for _, it := range items {
		if _, seen := totals[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		totals[it.ProductID] += it.Quantity
	}

	lines := make([]v1.PurchaseLine, 0, len(order))
	for _, id := range order {
		lines = append(lines, v1.PurchaseLine{
			ProductID: id,
			Value:     decimal.NewNullDecimal(decimal.NewFromInt(int64(totals[id]))),
		})
	}
	return lines
}

// UserID returns the shopper the session tracks for.
func (s *Session) UserID() string {
	return s.userID
}
