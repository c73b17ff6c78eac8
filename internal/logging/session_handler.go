package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// FieldSessionID is the structured logging key for the per-run identifier.
const FieldSessionID = "session_id"

// NewSessionID returns a fresh identifier for one CLI invocation.
func NewSessionID() string {
	return uuid.NewString()
}

// sessionIDHandler injects a session_id attribute into every record.
type sessionIDHandler struct {
	next slog.Handler
	id   string
}

func newSessionIDHandler(next slog.Handler, id string) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &sessionIDHandler{next: next, id: id}
}

func (h *sessionIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sessionIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldSessionID, h.id))
	return h.next.Handle(ctx, record)
}

func (h *sessionIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionIDHandler{next: h.next.WithAttrs(attrs), id: h.id}
}

func (h *sessionIDHandler) WithGroup(name string) slog.Handler {
	return &sessionIDHandler{next: h.next.WithGroup(name), id: h.id}
}
