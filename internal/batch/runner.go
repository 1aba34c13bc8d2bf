package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/identifier"
	"github.com/mutronic/marcaroni/internal/logging"
	"github.com/mutronic/marcaroni/internal/marc"
	"github.com/mutronic/marcaroni/internal/match"
	"github.com/mutronic/marcaroni/internal/output"
	"github.com/mutronic/marcaroni/internal/sources"
)

// MissingFieldPolicy decides what happens to a record without the required
// field.
type MissingFieldPolicy string

const (
	MissingFieldAbort MissingFieldPolicy = "abort"
	MissingFieldSkip  MissingFieldPolicy = "skip"
)

// Sink is the destination for one batch. It is a match.Sink that also
// carries the run counters.
type Sink interface {
	match.Sink
	Stats() *output.Stats
}

// Runner holds everything shared by the records of a run.
type Runner struct {
	Index         *catalog.Index
	Registry      *sources.Registry
	Engine        *match.Engine
	Plan          identifier.Plan
	RequiredField string
	MissingPolicy MissingFieldPolicy
	Logger        *slog.Logger
}

// Result summarizes a finished run.
type Result struct {
	Records int
	Stats   *output.Stats
}

// Run reads every record from reader and disposes it into sink. The record
// source is src. Context cancellation is checked between records.
func (r *Runner) Run(ctx context.Context, reader *marc.Reader, src sources.Source, sink Sink) (Result, error) {
	if r.Index == nil || r.Registry == nil || r.Engine == nil {
		return Result{}, errors.New("batch runner is not fully configured")
	}
	if sink == nil {
		return Result{}, errors.New("batch runner requires a sink")
	}
	if _, ok := r.Registry.Get(src.ID); !ok {
		return Result{}, configurationError(0, fmt.Errorf("%w: %s", sources.ErrUnknownSource, src.ID))
	}

	logger := logging.NewComponentLogger(r.Logger, "batch").With(logging.String(logging.FieldSourceID, src.ID))
	stats := sink.Stats()
	field := r.Plan.For(src.ID)
	required := strings.TrimSpace(r.RequiredField)

	logger.Info("batch started",
		logging.String("identifier_field", field.Tag),
		logging.Strings("identifier_subfields", field.Subfields),
		logging.String("required_field", required),
	)

	position := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{Records: position, Stats: stats}, err
		}
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var decodeErr *marc.DecodeError
		if errors.As(err, &decodeErr) {
			position++
			stats.CountRecord()
			stats.CountUnreadable()
			logging.ErrorWithContext(logger, "record could not be decoded", "record_decode_failed",
				logging.Record(position),
				logging.Error(err),
				logging.String(logging.FieldImpact, "record skipped; it appears in no output file"),
			)
			continue
		}
		if err != nil {
			return Result{Records: position, Stats: stats}, inputError(position+1, err)
		}
		position++
		stats.CountRecord()

		if err := r.handle(logger, rec, position, src, field, required, sink); err != nil {
			return Result{Records: position, Stats: stats}, err
		}
	}

	logger.Info("batch finished", logging.Int("records", position))
	return Result{Records: position, Stats: stats}, nil
}

func (r *Runner) handle(logger *slog.Logger, rec *marc.Record, position int, src sources.Source, field identifier.Field, required string, sink Sink) error {
	stats := sink.Stats()
	item := &match.Item{Record: rec, Title: rec.Title(), Position: position}

	if required != "" && !rec.HasField(required) {
		stats.CountMissingField()
		if r.MissingPolicy != MissingFieldSkip {
			logging.ErrorWithContext(logger, "record missing required field", "missing_required_field",
				logging.Record(position),
				logging.String("tag", required),
				logging.String(logging.FieldErrorHint, "fix the input file or set matching.missing_field_policy = \"skip\""),
			)
			return configurationError(position, fmt.Errorf("%w %s", ErrMissingRequiredField, required))
		}
		logger.Debug("record missing required field; routed to ambiguous",
			logging.Record(position),
			logging.String("tag", required),
		)
		return sink.Ambiguous(item, fmt.Sprintf("missing required field %s", required))
	}

	extracted := identifier.Extract(rec, field)
	if n := len(extracted.Malformed); n > 0 {
		stats.CountMalformed(n)
		logger.Debug("identifier has unexpected length",
			logging.Record(position),
			logging.Strings("identifiers", extracted.Malformed),
		)
	}
	if !extracted.FoundAny() {
		stats.CountNoIdentifier()
		logger.Debug("no usable identifier",
			logging.Record(position),
			logging.String("tag", field.Tag),
		)
		return sink.Ambiguous(item, fmt.Sprintf("no identifier found in field %s", field.Tag))
	}
	item.Identifiers = extracted.Identifiers

	refs := r.Index.Lookup(extracted.Identifiers)
	stats.CountMatches(refs)

	in, err := match.NewInput(item, src, refs, r.Registry)
	if err != nil {
		return configurationError(position, err)
	}
	if _, err := r.Engine.Dispose(in, sink); err != nil {
		return fmt.Errorf("record %d: %w", position, err)
	}
	return nil
}
