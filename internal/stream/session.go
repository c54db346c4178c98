package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rosterly/roster-api/internal/watch"
)

// State is the lifecycle state of a Session.
type State int

const (
	// StatePending means the session has been created but not yet activated.
	StatePending State = iota
	// StateActive means the ready frame has been sent and watches are live.
	StateActive
	// StateClosed is terminal; nothing is written after it is reached.
	StateClosed
)

// ErrSessionClosed is returned by emission paths once the session has
// been torn down.
var ErrSessionClosed = errors.New("stream session closed")

// Session owns the lifecycle of one client's streaming connection: the
// watch subscriptions feeding it, the debounce timer coalescing them, the
// keep-alive heartbeat, and teardown on disconnect.
//
// All writes to the transport are serialized under one mutex, and every
// emission path re-checks the state at write time. Scheduling and firing
// can straddle a disconnect, so cancelling timers at teardown is only an
// optimization; the state gate is the authoritative backstop against
// writes after close.
type Session struct {
	uid uuid.UUID

	mu      sync.Mutex
	state   State
	w       io.Writer
	flusher http.Flusher
	cancels []watch.CancelFunc

	debounce       *Debouncer
	keepAliveEvery time.Duration

	done      chan struct{}
	closeOnce sync.Once

	logger *slog.Logger
	now    func() time.Time
}

// NewSession creates a session for the given user over the given
// transport. The flusher may be nil in tests; when present it is invoked
// after every successful write so frames reach the client immediately.
func NewSession(
	uid uuid.UUID,
	w io.Writer,
	flusher http.Flusher,
	debounceWindow time.Duration,
	keepAliveEvery time.Duration,
	logger *slog.Logger,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		uid:            uid,
		state:          StatePending,
		w:              w,
		flusher:        flusher,
		keepAliveEvery: keepAliveEvery,
		done:           make(chan struct{}),
		logger:         logger.With("component", "stream_session", "uid", uid),
		now:            time.Now,
	}
	s.debounce = NewDebouncer(debounceWindow, s.emitChanged)
	return s
}

// Activate transitions the session to active: it sends the ready frame,
// opens the two watch subscriptions (owned todos, assigned todos), and
// starts the keep-alive heartbeat. The ready frame is guaranteed to
// precede any todos_changed emission because subscriptions do not exist
// until it has been written.
func (s *Session) Activate(ctx context.Context, source watch.Source) error {
	s.mu.Lock()
	if s.state != StatePending {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = StateActive
	err := WriteEvent(s.w, EventReady, readyPayload{OK: true})
	if err == nil && s.flusher != nil {
		s.flusher.Flush()
	}
	s.mu.Unlock()

	if err != nil {
		s.Teardown()
		return fmt.Errorf("failed to send ready frame: %w", err)
	}

	predicates := []watch.Predicate{
		watch.OwnedBy(s.uid),
		watch.AssignedTo(s.uid),
	}
	for _, p := range predicates {
		cancel, err := source.Subscribe(ctx, p, s.handleWatchEvent)
		if err != nil {
			s.Teardown()
			return fmt.Errorf("failed to subscribe to %s: %w", p, err)
		}

		s.mu.Lock()
		closed := s.state == StateClosed
		if !closed {
			s.cancels = append(s.cancels, cancel)
		}
		s.mu.Unlock()

		// Teardown ran while we were subscribing; the cancel handle was
		// never recorded, so release the subscription here.
		if closed {
			cancel()
			return ErrSessionClosed
		}
	}

	go s.keepAliveLoop()

	s.logger.Debug("session activated",
		"debounce_window", s.debounce.window,
		"keepalive_interval", s.keepAliveEvery)
	return nil
}

// handleWatchEvent is the delivery callback shared by both watch
// subscriptions. Error deliveries are treated the same as change
// deliveries: the source cannot say what changed, so conservatively
// assume something did and schedule a refresh notification.
func (s *Session) handleWatchEvent(ev watch.Event) {
	if s.State() != StateActive {
		return
	}
	if ev.Err != nil {
		s.logger.Debug("watch delivery error, scheduling refresh anyway", "error", ev.Err)
	}
	s.debounce.Schedule()
}

// emitChanged is the debounce firing callback.
func (s *Session) emitChanged(at time.Time) {
	err := s.write(func(w io.Writer) error {
		return WriteEvent(w, EventTodosChanged, changedPayload{At: at.UnixMilli()})
	})
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		s.logger.Debug("failed to emit change notification", "error", err)
	}
}

// keepAliveLoop writes a comment frame at a fixed interval until the
// session closes. Keep-alives and pending debounce emissions are
// independent; neither suppresses the other.
func (s *Session) keepAliveLoop() {
	ticker := time.NewTicker(s.keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_ = s.write(func(w io.Writer) error {
				return WriteComment(w, fmt.Sprintf("keep-alive %d", s.now().UnixMilli()))
			})
		}
	}
}

// write runs fn against the transport if and only if the session is still
// active, flushing on success. A transport failure is equivalent to a
// disconnect and triggers teardown.
func (s *Session) write(fn func(io.Writer) error) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	err := fn(s.w)
	if err == nil && s.flusher != nil {
		s.flusher.Flush()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("transport write failed, tearing down", "error", err)
		s.Teardown()
	}
	return err
}

// Teardown closes the session: it marks the state closed, stops the
// debounce timer and keep-alive loop, and cancels both watch
// subscriptions. It is idempotent and safe to call from any goroutine,
// including emission paths that detect a dead transport.
func (s *Session) Teardown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		cancels := s.cancels
		s.cancels = nil
		s.mu.Unlock()

		s.debounce.Stop()
		close(s.done)
		for _, cancel := range cancels {
			cancel()
		}

		s.logger.Debug("session closed")
	})
}

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the authenticated subject this session streams for.
func (s *Session) UserID() uuid.UUID {
	return s.uid
}
