package stream

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errWriter fails every write with a fixed error.
type errWriter struct{ err error }

func (w *errWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriteEvent(t *testing.T) {
	t.Parallel()

	t.Run("ready frame", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := WriteEvent(&buf, EventReady, readyPayload{OK: true})
		require.NoError(t, err)
		assert.Equal(t, "event: ready\ndata: {\"ok\":true}\n\n", buf.String())
	})

	t.Run("todos_changed frame", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := WriteEvent(&buf, EventTodosChanged, changedPayload{At: 1712345678901})
		require.NoError(t, err)
		assert.Equal(t, "event: todos_changed\ndata: {\"at\":1712345678901}\n\n", buf.String())
	})

	t.Run("frame ends with blank line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := WriteEvent(&buf, EventReady, readyPayload{OK: true})
		require.NoError(t, err)
		assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n\n")),
			"SSE frames must be terminated by a blank line")
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := WriteEvent(&buf, "bad", func() {})
		require.Error(t, err)
		assert.Zero(t, buf.Len(), "nothing should be written when marshaling fails")
	})

	t.Run("write failure is propagated", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("broken pipe")
		err := WriteEvent(&errWriter{err: sentinel}, EventReady, readyPayload{OK: true})
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)
	})
}

func TestWriteComment(t *testing.T) {
	t.Parallel()

	t.Run("comment frame", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := WriteComment(&buf, "keep-alive 1712345678901")
		require.NoError(t, err)
		assert.Equal(t, ": keep-alive 1712345678901\n\n", buf.String())
	})

	t.Run("write failure is propagated", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("broken pipe")
		err := WriteComment(&errWriter{err: sentinel}, "keep-alive 1")
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)
	})
}
