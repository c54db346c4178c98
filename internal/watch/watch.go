package watch

import (
	"context"

	"github.com/google/uuid"
)

// Change describes a single mutation of the todo collection. It carries
// just enough identity to route the notification: which todo changed, who
// owns it, and who is assigned to it.
type Change struct {
	Op          string      `json:"op"` // INSERT, UPDATE or DELETE
	TodoID      uuid.UUID   `json:"todo_id"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	AssigneeIDs []uuid.UUID `json:"assignee_ids"`
}

// Event is a single delivery to a subscription. Exactly one of Change or
// Err is set. An Err delivery means the source hit a transient problem
// (e.g. a dropped listen connection) and cannot say what changed;
// consumers should conservatively assume their predicate matched.
type Event struct {
	Change *Change
	Err    error
}

// Handler receives events for one subscription. Handlers must be safe to
// call from the source's delivery goroutine and must not block.
type Handler func(Event)

// CancelFunc tears down a subscription. It is idempotent: calling it more
// than once is a no-op after the first call.
type CancelFunc func()

// Source is a subscription primitive over the todo collection.
type Source interface {
	// Subscribe registers fn to be called whenever a change matching the
	// predicate occurs. The subscription lives until the returned
	// CancelFunc is called or the context is cancelled.
	Subscribe(ctx context.Context, p Predicate, fn Handler) (CancelFunc, error)
}

// Publisher is the write side of a source: mutation paths publish the
// changes they performed so subscribers hear about them without polling.
type Publisher interface {
	Publish(change Change)
}
