package stream

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rosterly/roster-api/internal/api/shared"
	"github.com/rosterly/roster-api/internal/config"
	"github.com/rosterly/roster-api/internal/platform/logger"
	"github.com/rosterly/roster-api/internal/service/auth"
	"github.com/rosterly/roster-api/internal/watch"
)

const (
	// queryParamToken carries the bearer credential for clients that
	// cannot set headers on an EventSource (the common browser case).
	queryParamToken = "token"

	// sessionCookieName is the fallback credential for cookie-based clients.
	sessionCookieName = "session_token"

	// unauthorizedMessage is deliberately identical for missing, expired
	// and malformed credentials so the response does not reveal which.
	unauthorizedMessage = "Invalid or missing credentials"
)

// TokenVerifier is the slice of the auth service the stream needs:
// verifying an access credential and extracting the subject.
type TokenVerifier interface {
	ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// Handler serves the GET /api/events endpoint. It authenticates the
// establishment request, applies origin gating, then hands the connection
// to a Session for the remainder of its lifetime.
type Handler struct {
	verifier       TokenVerifier
	source         watch.Source
	debounceWindow time.Duration
	keepAliveEvery time.Duration
	allowedOrigins map[string]struct{}
	logger         *slog.Logger
}

// NewHandler creates a stream Handler with the given dependencies.
func NewHandler(
	verifier TokenVerifier,
	source watch.Source,
	cfg config.StreamConfig,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = struct{}{}
	}
	return &Handler{
		verifier:       verifier,
		source:         source,
		debounceWindow: time.Duration(cfg.DebounceWindowMs) * time.Millisecond,
		keepAliveEvery: time.Duration(cfg.KeepAliveIntervalSec) * time.Second,
		allowedOrigins: origins,
		logger:         log.With("component", "stream_handler"),
	}
}

// ServeHTTP establishes one streaming session. Authentication failures
// are reported as a plain JSON error before any stream framing; once the
// stream headers have been flushed, failures surface to the client only
// as silence.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	credential := r.URL.Query().Get(queryParamToken)
	if credential == "" {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			credential = cookie.Value
		}
	}
	if credential == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	claims, err := h.verifier.ValidateToken(r.Context(), credential)
	if err != nil {
		log.Debug("stream establishment rejected", "error", err)
		shared.RespondWithError(w, r, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("response writer does not support flushing, cannot stream")
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	h.applyOriginHeaders(w, r)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	// Tells nginx-style proxies not to buffer the response.
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sess := NewSession(
		claims.UserID,
		w,
		flusher,
		h.debounceWindow,
		h.keepAliveEvery,
		log,
	)
	defer sess.Teardown()

	if err := sess.Activate(r.Context(), h.source); err != nil {
		// Stream headers are already on the wire; nothing more can be
		// reported to this client.
		log.Warn("failed to activate stream session", "error", err, "uid", claims.UserID)
		return
	}

	log.Info("stream session established", "uid", claims.UserID)

	// Block until the client disconnects or the session dies from a
	// transport write failure.
	select {
	case <-r.Context().Done():
	case <-sess.Done():
	}
}

// applyOriginHeaders echoes an allow-listed Origin back exactly (never a
// wildcard) and marks the response as varying on Origin. Requests from
// unlisted or absent origins get neither header; browsers then block
// script access to the stream under the same-origin policy.
func (h *Handler) applyOriginHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	if _, ok := h.allowedOrigins[origin]; !ok {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Add("Vary", "Origin")
}
