package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterly/roster-api/internal/watch"
)

func newTestListener(t *testing.T) (*ChangeListener, *watch.Dispatcher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := watch.NewDispatcher(logger)
	return NewChangeListener("postgres://unused", dispatcher, logger), dispatcher
}

// listenerCollector records events delivered to one subscription.
type listenerCollector struct {
	events []watch.Event
}

func (c *listenerCollector) handle(ev watch.Event) {
	c.events = append(c.events, ev)
}

func TestChangeListener_HandlePayloadPublishesDecodedChange(t *testing.T) {
	t.Parallel()

	listener, dispatcher := newTestListener(t)
	owner := uuid.New()
	assignee := uuid.New()
	todoID := uuid.New()

	events := &listenerCollector{}
	_, err := dispatcher.Subscribe(context.Background(), watch.OwnedBy(owner), events.handle)
	require.NoError(t, err)

	payload := fmt.Sprintf(
		`{"op":"UPDATE","todo_id":%q,"owner_id":%q,"assignee_ids":[%q]}`,
		todoID, owner, assignee,
	)
	listener.handlePayload(payload)

	require.Len(t, events.events, 1)
	change := events.events[0].Change
	require.NotNil(t, change)
	assert.Equal(t, "UPDATE", change.Op)
	assert.Equal(t, todoID, change.TodoID)
	assert.Equal(t, owner, change.OwnerID)
	assert.Equal(t, []uuid.UUID{assignee}, change.AssigneeIDs)
}

func TestChangeListener_HandlePayloadNormalizesMissingAssignees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "assignee_ids absent",
			payload: `{"op":"DELETE","todo_id":%q,"owner_id":%q}`,
		},
		{
			name:    "assignee_ids null",
			payload: `{"op":"DELETE","todo_id":%q,"owner_id":%q,"assignee_ids":null}`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			listener, dispatcher := newTestListener(t)
			owner := uuid.New()

			events := &listenerCollector{}
			_, err := dispatcher.Subscribe(context.Background(), watch.OwnedBy(owner), events.handle)
			require.NoError(t, err)

			listener.handlePayload(fmt.Sprintf(tc.payload, uuid.New(), owner))

			require.Len(t, events.events, 1)
			change := events.events[0].Change
			require.NotNil(t, change)
			assert.NotNil(t, change.AssigneeIDs, "nil assignee set must be normalized")
			assert.Empty(t, change.AssigneeIDs)
		})
	}
}

func TestChangeListener_HandlePayloadDropsMalformed(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "not json",
			payload: "definitely not json",
		},
		{
			name:    "wrong json shape",
			payload: `["a","list"]`,
		},
		{
			name:    "invalid todo id",
			payload: fmt.Sprintf(`{"op":"UPDATE","todo_id":"not-a-uuid","owner_id":%q}`, owner),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			listener, dispatcher := newTestListener(t)

			events := &listenerCollector{}
			_, err := dispatcher.Subscribe(context.Background(), watch.OwnedBy(owner), events.handle)
			require.NoError(t, err)

			listener.handlePayload(tc.payload)

			assert.Empty(t, events.events, "malformed payloads are dropped, not published")
		})
	}
}
