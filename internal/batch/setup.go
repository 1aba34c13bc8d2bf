package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/config"
	"github.com/mutronic/marcaroni/internal/identifier"
	"github.com/mutronic/marcaroni/internal/logging"
	"github.com/mutronic/marcaroni/internal/match"
	"github.com/mutronic/marcaroni/internal/snapshot"
	"github.com/mutronic/marcaroni/internal/sources"
)

// PlanFromConfig builds the identifier plan from the matching section.
func PlanFromConfig(m config.Matching) identifier.Plan {
	plan := identifier.NewPlan(identifier.NewField(m.IdentifierField, m.IdentifierSubfields...))
	for sourceID, tag := range m.FieldOverrides {
		plan.Override(sourceID, identifier.NewField(tag, m.IdentifierSubfields...))
	}
	return plan
}

// EngineFromConfig builds a disposition engine with the configured
// exceptions and tie policy.
func EngineFromConfig(m config.Matching, logger *slog.Logger) (*match.Engine, error) {
	ties, err := match.ParseTiePolicy(m.TiePolicy)
	if err != nil {
		return nil, configurationError(0, err)
	}
	exceptions := make([]match.Exception, 0, len(m.Exceptions))
	for _, ex := range m.Exceptions {
		exceptions = append(exceptions, match.FieldContains{
			SourceID: ex.Source,
			Tag:      ex.Tag,
			Code:     ex.Subfield,
			Needle:   ex.Contains,
			Reason:   ex.Reason,
		})
	}
	return match.NewEngine(
		match.WithExceptions(exceptions...),
		match.WithTiePolicy(ties),
		match.WithLogger(logger),
	), nil
}

// IndexField returns the identifier field records from sourceID are
// matched on, honouring matching.field_overrides.
func IndexField(m config.Matching, sourceID string) identifier.Field {
	return PlanFromConfig(m).For(sourceID)
}

// NewRunner wires a Runner from configuration.
func NewRunner(cfg *config.Config, reg *sources.Registry, idx *catalog.Index, logger *slog.Logger) (*Runner, error) {
	engine, err := EngineFromConfig(cfg.Matching, logger)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Index:         idx,
		Registry:      reg,
		Engine:        engine,
		Plan:          PlanFromConfig(cfg.Matching),
		RequiredField: cfg.Matching.RequiredField,
		MissingPolicy: MissingFieldPolicy(cfg.Matching.MissingFieldPolicy),
		Logger:        logger,
	}, nil
}

// LoadIndex reads the catalog snapshot rows for field from the configured
// backend and verifies every referenced source is registered. field must be
// the one the run's source extracts, see IndexField.
func LoadIndex(ctx context.Context, cfg *config.Config, reg *sources.Registry, field identifier.Field, logger *slog.Logger) (*catalog.Index, error) {
	logger = logging.NewComponentLogger(logger, "snapshot").With(logging.String("tag", field.Tag))

	var rows []catalog.Row
	if cfg.UsesSQLiteSnapshot() {
		store, err := snapshot.Open(cfg.Data.SnapshotDB)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if _, err := store.LatestImport(ctx); err != nil {
			return nil, configurationError(0, err)
		}
		rows, err = store.Rows(ctx, field.Tag)
		if err != nil {
			return nil, err
		}
		logger.Info("snapshot loaded",
			logging.String("backend", config.SnapshotBackendSQLite),
			logging.String("path", cfg.Data.SnapshotDB),
			logging.Int("rows", len(rows)),
		)
	} else {
		var (
			stats catalog.LoadStats
			err   error
		)
		rows, stats, err = catalog.LoadFile(cfg.Data.BibDataFile, catalog.FilterForField(field))
		if err != nil {
			return nil, configurationError(0, err)
		}
		logger.Info("snapshot loaded",
			logging.String("backend", config.SnapshotBackendCSV),
			logging.String("path", cfg.Data.BibDataFile),
			logging.Int("rows_read", stats.Read),
			logging.Int("rows_kept", stats.Kept),
			logging.Int("rows_filtered", stats.Filtered),
			logging.Int("rows_invalid", stats.Invalid),
		)
	}

	idx, err := catalog.Build(rows)
	if err != nil {
		return nil, configurationError(0, fmt.Errorf("tag %s: %w", field.Tag, err))
	}
	if err := idx.ValidateSources(reg); err != nil {
		return nil, configurationError(0, err)
	}
	return idx, nil
}
