package logging

import (
	"context"
	"errors"
	"log/slog"
)

// fanoutHandler sends each record to every wrapped handler whose level
// admits it. The run log under an output directory and the process log are
// joined this way for the duration of one input file.
type fanoutHandler []slog.Handler

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	var live fanoutHandler
	for _, h := range handlers {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	}
	return live
}

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		// Handlers may retain or mutate the record; each gets its own copy.
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanoutHandler) each(fn func(slog.Handler) slog.Handler) fanoutHandler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = fn(h)
	}
	return next
}

// TeeLogger returns a logger writing to base's handler and to every extra
// handler. Attributes already bound to base are kept.
func TeeLogger(base *slog.Logger, extra ...slog.Handler) *slog.Logger {
	handlers := make([]slog.Handler, 0, len(extra)+1)
	if base != nil {
		handlers = append(handlers, base.Handler())
	}
	return slog.New(newFanoutHandler(append(handlers, extra...)...))
}
