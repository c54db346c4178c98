package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rosterly/roster-api/internal/redact"
	"github.com/rosterly/roster-api/internal/watch"
)

// todoChannel is the NOTIFY channel the database trigger publishes todo
// mutations on.
const todoChannel = "todo_events"

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
)

// ChangeListener bridges PostgreSQL LISTEN/NOTIFY into the watch
// dispatcher. Triggers on the todos and todo_assignees tables emit one
// notification per row mutation; the listener decodes each payload and
// republishes it as a watch.Change, so changes made by other processes
// reach streaming clients the same way local mutations do. One logical
// edit can produce several notifications (the todos row plus each
// assignee row); subscribers coalesce them.
type ChangeListener struct {
	connString string
	dispatcher *watch.Dispatcher
	logger     *slog.Logger
}

// NewChangeListener creates a listener that will connect to the database
// at connString and publish decoded notifications into dispatcher.
func NewChangeListener(connString string, dispatcher *watch.Dispatcher, logger *slog.Logger) *ChangeListener {
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeListener{
		connString: connString,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "change_listener")),
	}
}

// Run listens for todo notifications until ctx is cancelled. Connection
// failures are reported to subscribers via PublishError and retried with
// exponential backoff; Run only returns once the context ends.
func (l *ChangeListener) Run(ctx context.Context) error {
	delay := initialReconnectDelay
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			l.logger.Info("change listener stopping", slog.String("reason", ctx.Err().Error()))
			return ctx.Err()
		}

		l.logger.Warn("listen connection lost, reconnecting",
			slog.String("error", redact.Error(err)),
			slog.Duration("retry_in", delay))
		l.dispatcher.PublishError(fmt.Errorf("change feed interrupted: %w", err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// listen holds one connection open and pumps notifications until the
// connection breaks or the context is cancelled.
func (l *ChangeListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("failed to connect for listening: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+todoChannel); err != nil {
		return fmt.Errorf("failed to LISTEN on %s: %w", todoChannel, err)
	}
	l.logger.Info("listening for todo changes", slog.String("channel", todoChannel))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed waiting for notification: %w", err)
		}
		l.handlePayload(notification.Payload)
	}
}

// handlePayload decodes one trigger payload and publishes it. Malformed
// payloads are logged and dropped rather than tearing down the
// connection; the trigger controls the format, so a decode failure means
// a schema drift, not a transport problem.
func (l *ChangeListener) handlePayload(payload string) {
	var change watch.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		l.logger.Error("failed to decode change notification",
			slog.String("error", err.Error()))
		return
	}
	if change.AssigneeIDs == nil {
		change.AssigneeIDs = []uuid.UUID{}
	}
	l.dispatcher.Publish(change)
}
