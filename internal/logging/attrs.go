package logging

import (
	"context"
	"log/slog"
)

type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Strings(key string, values []string) Attr { return slog.Any(key, values) }

// Error wraps err under the "error" key. A nil error logs as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Record tags a line with the 1-based position of a record in its input.
func Record(position int) Attr { return slog.Int(FieldRecord, position) }

// Args converts attrs to the variadic form slog.Logger methods accept.
func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger returns logger tagged with component. A nil logger
// yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey reports whether any attr in attrs uses key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func withDefault(attrs []Attr, key, value string) []Attr {
	if HasAttrKey(attrs, key) {
		return attrs
	}
	return append(attrs, String(key, value))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact, filling in defaults for whichever the caller left out.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check the marcaroni log for details")
	attrs = withDefault(attrs, FieldImpact, "run continued with warnings")
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check the marcaroni log for details")
	logger.Error(msg, Args(attrs...)...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }

// DecisionAttrs describes a disposition decision: which disposition was
// chosen, by which rule, and why.
func DecisionAttrs(disposition, rule, reason string) []Attr {
	attrs := []Attr{
		String(FieldDisposition, disposition),
		String(FieldRule, rule),
	}
	if reason != "" {
		attrs = append(attrs, String(FieldReason, reason))
	}
	return attrs
}
