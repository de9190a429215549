package emitter

import (
	"sync"
	"time"
)

// DefaultDebounceWindow collapses rapid-fire triggers such as typing.
const DefaultDebounceWindow = 300 * time.Millisecond

// Debouncer holds at most one pending call. Each Trigger cancels the
// pending call and reschedules the new one after the window; a superseded
// call never runs.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending func()
	gen     uint64
}

// NewDebouncer creates a debouncer. A non-positive window uses
// DefaultDebounceWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window}
}

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// fire runs the pending call if no Trigger, Cancel or Flush superseded it
// while the timer goroutine waited for the lock.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.take()
	d.mu.Unlock()

	fn()
}

// take clears the slot. Caller holds mu.
func (d *Debouncer) take() func() {
	fn := d.pending
	d.pending = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return fn
}

// Cancel drops the pending call. It reports whether one was dropped.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.take() != nil
}

// Flush runs the pending call now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.take()
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// keyedDebouncer keeps one Debouncer per logical key. Slots are released
// once their call has run.
type keyedDebouncer struct {
	mu     sync.Mutex
	window time.Duration
	slots  map[string]*Debouncer
}

func newKeyedDebouncer(window time.Duration) *keyedDebouncer {
	return &keyedDebouncer{window: window, slots: make(map[string]*Debouncer)}
}

func (k *keyedDebouncer) Trigger(key string, fn func()) {
	k.mu.Lock()
	defer k.mu.Unlock()

	d, ok := k.slots[key]
	if !ok {
		d = NewDebouncer(k.window)
		k.slots[key] = d
	}
	d.Trigger(func() {
		k.release(key, d)
		fn()
	})
}

func (k *keyedDebouncer) release(key string, d *Debouncer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.slots[key] == d && !d.Pending() {
		delete(k.slots, key)
	}
}

// FlushAll runs every pending call now.
func (k *keyedDebouncer) FlushAll() {
	k.mu.Lock()
	slots := make([]*Debouncer, 0, len(k.slots))
	for _, d := range k.slots {
		slots = append(slots, d)
	}
	k.mu.Unlock()

	for _, d := range slots {
		d.Flush()
	}
}

// Len returns the number of keys with a live slot.
func (k *keyedDebouncer) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
