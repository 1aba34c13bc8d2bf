package logging

import (
	"context"
	"log/slog"
)

// runIDHandler injects a run_id attribute into every record.
type runIDHandler struct {
	base  slog.Handler
	runID string
}

// WithRunID returns a logger whose records all carry runID.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if runID == "" {
		return logger
	}
	return slog.New(&runIDHandler{base: logger.Handler(), runID: runID})
}

func (h *runIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *runIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldRunID, h.runID))
	return h.base.Handle(ctx, record)
}

func (h *runIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runIDHandler{base: h.base.WithAttrs(attrs), runID: h.runID}
}

func (h *runIDHandler) WithGroup(name string) slog.Handler {
	return &runIDHandler{base: h.base.WithGroup(name), runID: h.runID}
}
