package watch

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher is an in-process implementation of Source that fans changes
// out to registered subscriptions. Mutation handlers publish into it
// directly, and the postgres change listener feeds it with changes
// performed by other processes.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	logger *slog.Logger
}

type subscription struct {
	predicate Predicate
	fn        Handler
}

var _ Source = (*Dispatcher)(nil)
var _ Publisher = (*Dispatcher)(nil)

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		subs:   make(map[uint64]*subscription),
		logger: logger.With("component", "watch_dispatcher"),
	}
}

// Subscribe implements Source. The subscription is removed when the
// returned CancelFunc runs or when ctx is cancelled, whichever happens
// first; cancellation is idempotent either way.
func (d *Dispatcher) Subscribe(ctx context.Context, p Predicate, fn Handler) (CancelFunc, error) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = &subscription{predicate: p, fn: fn}
	count := len(d.subs)
	d.mu.Unlock()

	d.logger.Debug("subscription registered",
		"predicate", p.String(),
		"subscription_count", count)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subs, id)
			d.mu.Unlock()
			d.logger.Debug("subscription cancelled", "predicate", p.String())
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return cancel, nil
}

// Publish delivers the change to every subscription whose predicate
// matches. Handlers for different subscriptions may run in any order; the
// handler slice is snapshotted so a handler cancelling its own
// subscription mid-delivery does not deadlock.
func (d *Dispatcher) Publish(change Change) {
	d.mu.RLock()
	matched := make([]Handler, 0, len(d.subs))
	for _, sub := range d.subs {
		if sub.predicate.Matches(&change) {
			matched = append(matched, sub.fn)
		}
	}
	d.mu.RUnlock()

	d.logger.Debug("publishing change",
		"op", change.Op,
		"todo_id", change.TodoID,
		"matched_subscriptions", len(matched))

	for _, fn := range matched {
		fn(Event{Change: &change})
	}
}

// PublishError delivers a source-level failure to every subscription,
// regardless of predicate. A broken feed cannot say which documents
// changed, so every subscriber must assume its predicate matched.
func (d *Dispatcher) PublishError(err error) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.subs))
	for _, sub := range d.subs {
		handlers = append(handlers, sub.fn)
	}
	d.mu.RUnlock()

	d.logger.Warn("publishing source error to all subscriptions",
		"error", err,
		"subscription_count", len(handlers))

	for _, fn := range handlers {
		fn(Event{Err: err})
	}
}

// SubscriptionCount returns the number of live subscriptions.
func (d *Dispatcher) SubscriptionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}
