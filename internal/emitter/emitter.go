package emitter

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultSendTimeout = 5 * time.Second

// Sender delivers events to the ingestion API. *Tracker implements it.
type Sender interface {
	Track(ctx context.Context, evt *v1.Event) (*interaction.Record, error)
	TrackPurchases(ctx context.Context, req *v1.PurchaseBatchRequest) ([]v1.LineResult, error)
}

// Options configures an Emitter.
type Options struct {
	// SessionID is attached to every event. Generated when empty.
	SessionID string
	// SendTimeout bounds each background send.
	SendTimeout time.Duration
	// DebounceWindow applies to view and search events.
	DebounceWindow time.Duration
}

// Emitter is the fire-and-forget front of a Sender. Every method returns
// immediately; failures are logged and never reach the caller.
type Emitter struct {
	sender    Sender
	sessionID string
	timeout   time.Duration

	views    *keyedDebouncer
	searches *keyedDebouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates an Emitter.
func New(sender Sender, opts Options) *Emitter {
	if sender == nil {
		panic("emitter: sender must not be nil")
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Emitter{
		sender:    sender,
		sessionID: opts.SessionID,
		timeout:   opts.SendTimeout,
		views:     newKeyedDebouncer(opts.DebounceWindow),
		searches:  newKeyedDebouncer(opts.DebounceWindow),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SessionID returns the session id attached to emitted events.
func (e *Emitter) SessionID() string {
	return e.sessionID
}

// View records a product page view. Repeated views of the same product by
// the same user within the debounce window collapse into one event.
func (e *Emitter) View(userID, productID, category string) {
	evt := e.event(userID, productID, interaction.KindView)
	evt.Category = optional(category)
	e.views.Trigger(userID+"\x00"+productID, func() { e.send(evt) })
}

// AddToCart records quantity units added to the cart.
func (e *Emitter) AddToCart(userID, productID, category string, quantity decimal.Decimal) {
	evt := e.event(userID, productID, interaction.KindAddToCart)
	evt.Value = decimal.NewNullDecimal(quantity)
	evt.Category = optional(category)
	e.send(evt)
}

// RemoveFromCart records that the product left the cart. The record falls
// back to a view unless it is already a purchase.
func (e *Emitter) RemoveFromCart(userID, productID string) {
	e.send(e.event(userID, productID, interaction.KindView))
}

// Search records a completed search. One event is sent per user and query
// within the debounce window, attributed to the first result. Blank and
// "all" queries and searches without results are ignored.
func (e *Emitter) Search(userID, query string, resultProductIDs []string) {
	q := strings.TrimSpace(query)
	if q == "" || strings.EqualFold(q, "all") || len(resultProductIDs) == 0 {
		return
	}
	evt := e.event(userID, resultProductIDs[0], interaction.KindSearch)
	evt.SearchQuery = q
	e.searches.Trigger(userID+"\x00"+strings.ToLower(q), func() { e.send(evt) })
}

// Purchase records every line of a confirmed order as one batch.
func (e *Emitter) Purchase(userID string, lines []v1.PurchaseLine) {
	if len(lines) == 0 {
		return
	}
	req := &v1.PurchaseBatchRequest{
		UserID:   userID,
		Products: append([]v1.PurchaseLine(nil), lines...),
	}
	e.dispatch("purchase batch", func(ctx context.Context) error {
		results, err := e.sender.TrackPurchases(ctx, req)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Status == v1.LineStatusError {
				slog.Warn("[Emitter] Purchase line rejected",
					"user_id", userID,
					"product_id", r.ProductID,
					"message", r.Message)
			}
		}
		return nil
	})
}

// Review records a star rating for a purchased product.
func (e *Emitter) Review(userID, productID string, stars decimal.Decimal) {
	evt := e.event(userID, productID, interaction.KindReview)
	evt.ReviewStars = decimal.NewNullDecimal(stars)
	e.send(evt)
}

// Close sends pending debounced events, waits for in-flight sends and
// rejects any later event.
func (e *Emitter) Close() {
	e.views.FlushAll()
	e.searches.FlushAll()

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()
	e.cancel()
}

func (e *Emitter) event(userID, productID string, kind interaction.Kind) *v1.Event {
	return &v1.Event{
		UserID:          userID,
		ProductID:       productID,
		InteractionType: kind,
		SessionID:       e.sessionID,
	}
}

func (e *Emitter) send(evt *v1.Event) {
	e.dispatch(string(evt.InteractionType), func(ctx context.Context) error {
		_, err := e.sender.Track(ctx, evt)
		return err
	})
}

func (e *Emitter) dispatch(what string, fn func(ctx context.Context) error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		slog.Debug("[Emitter] Dropping event after close", "event", what)
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(e.ctx, e.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			slog.Warn("[Emitter] Failed to track interaction", "event", what, "error", err)
		}
	}()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
