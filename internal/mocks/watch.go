package mocks

import (
	"context"
	"sync"

	"github.com/rosterly/roster-api/internal/watch"
)

// MockWatchSource implements watch.Source for testing. It records
// subscriptions and lets tests drive deliveries by hand.
type MockWatchSource struct {
	// SubscribeFn allows test cases to mock the Subscribe behavior
	SubscribeFn func(ctx context.Context, p watch.Predicate, fn watch.Handler) (watch.CancelFunc, error)

	// SubscribeErr is returned by the default Subscribe implementation
	SubscribeErr error

	mu       sync.Mutex
	handlers []subscribed
	cancels  int
}

type subscribed struct {
	predicate watch.Predicate
	fn        watch.Handler
	cancelled bool
}

var _ watch.Source = (*MockWatchSource)(nil)

// Subscribe implements the watch.Source interface
func (m *MockWatchSource) Subscribe(
	ctx context.Context,
	p watch.Predicate,
	fn watch.Handler,
) (watch.CancelFunc, error) {
	if m.SubscribeFn != nil {
		return m.SubscribeFn(ctx, p, fn)
	}
	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}

	m.mu.Lock()
	idx := len(m.handlers)
	m.handlers = append(m.handlers, subscribed{predicate: p, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.handlers[idx].cancelled = true
			m.cancels++
			m.mu.Unlock()
		})
	}, nil
}

// Deliver invokes every live handler whose predicate matches the change.
func (m *MockWatchSource) Deliver(change watch.Change) {
	for _, fn := range m.matching(&change) {
		fn(watch.Event{Change: &change})
	}
}

// DeliverError invokes every live handler with a source error.
func (m *MockWatchSource) DeliverError(err error) {
	for _, fn := range m.matching(nil) {
		fn(watch.Event{Err: err})
	}
}

// SubscriptionCount returns the number of live (uncancelled) subscriptions.
func (m *MockWatchSource) SubscriptionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.handlers {
		if !s.cancelled {
			count++
		}
	}
	return count
}

// CancelCount returns how many subscriptions have been cancelled.
func (m *MockWatchSource) CancelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}

// matching snapshots live handlers; a nil change matches everything.
func (m *MockWatchSource) matching(change *watch.Change) []watch.Handler {
	m.mu.Lock()
	defer m.mu.Unlock()
	fns := []watch.Handler{}
	for _, s := range m.handlers {
		if s.cancelled {
			continue
		}
		if change == nil || s.predicate.Matches(change) {
			fns = append(fns, s.fn)
		}
	}
	return fns
}

// MockPublisher implements watch.Publisher for testing, recording every
// published change.
type MockPublisher struct {
	mu      sync.Mutex
	Changes []watch.Change
}

var _ watch.Publisher = (*MockPublisher)(nil)

// Publish implements the watch.Publisher interface
func (m *MockPublisher) Publish(change watch.Change) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Changes = append(m.Changes, change)
}

// Published returns a snapshot of the recorded changes.
func (m *MockPublisher) Published() []watch.Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]watch.Change, len(m.Changes))
	copy(out, m.Changes)
	return out
}
