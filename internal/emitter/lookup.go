package emitter

import (
	"context"
	"sync"
	"time"

	"github.com/aevon-lab/storefront-signals/internal/recommendation"
)

// Recommender reads ranked recommendations. *Tracker implements it.
type Recommender interface {
	Recommendations(ctx context.Context, userID, productID string) (recommendation.List, error)
}

// ResultFunc receives the outcome of a lookup.
type ResultFunc func(userID, productID string, list recommendation.List, err error)

// Lookup collapses a burst of personalization requests, such as one per
// keystroke, into a single call for the last request. A new lookup also
// cancels the one still in flight, so stale results are never delivered.
type Lookup struct {
	rec      Recommender
	onResult ResultFunc
	timeout  time.Duration
	debounce *Debouncer

	mu       sync.Mutex
	closed   bool
	inflight context.CancelFunc
	wg       sync.WaitGroup
}

// NewLookup creates a debounced lookup delivering results to onResult.
func NewLookup(rec Recommender, window, timeout time.Duration, onResult ResultFunc) *Lookup {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Lookup{
		rec:      rec,
		onResult: onResult,
		timeout:  timeout,
		debounce: NewDebouncer(window),
	}
}

// Request schedules a lookup for userID, anchored on productID when set.
func (l *Lookup) Request(userID, productID string) {
	l.debounce.Trigger(func() { l.run(userID, productID) })
}

func (l *Lookup) run(userID, productID string) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	if l.inflight != nil {
		l.inflight()
	}
	l.inflight = cancel
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer cancel()

		list, err := l.rec.Recommendations(ctx, userID, productID)
		if ctx.Err() == context.Canceled {
			return
		}
		l.onResult(userID, productID, list, err)
	}()
}

// Close drops a pending lookup, cancels the one in flight and waits for it.
// Requests after Close are ignored.
func (l *Lookup) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.debounce.Cancel()

	l.mu.Lock()
	if l.inflight != nil {
		l.inflight()
		l.inflight = nil
	}
	l.mu.Unlock()

	l.wg.Wait()
}
