package stream

import (
	"encoding/json"
	"fmt"
	"io"
)

// Outbound event names. The stream carries exactly two named events plus
// anonymous keep-alive comments.
const (
	// EventReady is sent once, immediately after the session is established.
	EventReady = "ready"

	// EventTodosChanged signals that one or more todos relevant to the
	// session's user changed. It carries only an emission timestamp; the
	// client re-fetches the list itself.
	EventTodosChanged = "todos_changed"
)

// readyPayload is the data for the ready event.
type readyPayload struct {
	OK bool `json:"ok"`
}

// changedPayload is the data for the todos_changed event. At is the
// emission time in unix milliseconds.
type changedPayload struct {
	At int64 `json:"at"`
}

// WriteEvent writes a named SSE event frame with a JSON payload:
//
//	event: <name>
//	data: <json>
//
// terminated by a blank line.
func WriteEvent(w io.Writer, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event payload: %w", name, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return fmt.Errorf("failed to write %s event frame: %w", name, err)
	}
	return nil
}

// WriteComment writes an anonymous SSE comment frame:
//
//	: <text>
//
// Conforming client parsers ignore comment frames; they exist only to
// defeat idle-connection timeouts on intermediary proxies.
func WriteComment(w io.Writer, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("failed to write comment frame: %w", err)
	}
	return nil
}
