package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mutronic/marcaroni/internal/batch"
	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/config"
	"github.com/mutronic/marcaroni/internal/logging"
	"github.com/mutronic/marcaroni/internal/marc"
	"github.com/mutronic/marcaroni/internal/output"
	"github.com/mutronic/marcaroni/internal/preflight"
	"github.com/mutronic/marcaroni/internal/snapshot"
	"github.com/mutronic/marcaroni/internal/sources"
	"github.com/mutronic/marcaroni/internal/textutil"
)

const (
	outputLockName = ".marcaroni.lock"
	// totalsHeading heads the combined summary printed after several files.
	totalsHeading = "All files"
)

type matchOptions struct {
	SourceID  string
	Prefix    string
	OutputDir string
	Files     []string
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match --source ID FILE...",
		Short: "Match MARC files against the catalog snapshot",
		Long: `Match reads each MARC file, looks up every record's identifiers in the
catalog snapshot and writes the record to one partition file per
disposition. Each input file gets its own directory under the output
directory, named after the file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts.Files = args
			return runMatch(cmd.Context(), cmd.OutOrStdout(), cfg, logger, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SourceID, "source", "s", "", "Source id the records were supplied under (see 'marcaroni sources')")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Partition file prefix (default: sanitized source name)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Output directory (default: paths.output_dir)")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func runMatch(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger, opts matchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCfg := *cfg
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}
		runCfg.Paths.OutputDir = expanded
	}
	if err := os.MkdirAll(runCfg.Paths.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "cli")
	colorize := shouldColorize(out)

	results := preflight.RunAll(ctx, &runCfg, time.Now())
	for _, w := range preflight.Warnings(results) {
		logging.WarnWithContext(logger, "catalog snapshot is stale", "snapshot_stale",
			logging.String("check", w.Name),
			logging.String("detail", w.Detail),
			logging.String(logging.FieldErrorHint, "refresh the bib data export or run 'marcaroni snapshot import'"),
			logging.String(logging.FieldImpact, "records added to the catalog since the export will not be matched"),
		)
	}
	if err := preflight.Err(results); err != nil {
		for _, line := range preflightLines(results, colorize) {
			fmt.Fprintln(out, line)
		}
		return err
	}

	lock := flock.New(filepath.Join(runCfg.Paths.OutputDir, outputLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another marcaroni run is writing to %s", runCfg.Paths.OutputDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	reg, err := sources.LoadFile(runCfg.Data.SourcesFile)
	if err != nil {
		return err
	}
	src, err := reg.Lookup(strings.TrimSpace(opts.SourceID))
	if err != nil {
		return fmt.Errorf("%w (list sources with 'marcaroni sources')", err)
	}
	idx, err := batch.LoadIndex(ctx, &runCfg, reg, batch.IndexField(runCfg.Matching, src.ID), logger)
	if err != nil {
		return err
	}

	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = textutil.SanitizeToken(src.Name)
	} else {
		prefix = textutil.SanitizeFileName(prefix)
	}

	store := openRunHistory(&runCfg, logger)
	if store != nil {
		defer store.Close()
	}

	totals := output.NewStats()
	for _, path := range opts.Files {
		job := matchJob{
			cfg:    &runCfg,
			reg:    reg,
			idx:    idx,
			src:    src,
			prefix: prefix,
			path:   path,
			store:  store,
		}
		summary, runID, err := job.run(ctx, logger)
		if summary != nil {
			fmt.Fprintln(out, renderSummary(*summary, reg, runID, colorize))
			totals.Merge(summary.Stats)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if len(opts.Files) > 1 {
		fmt.Fprintln(out, renderSummary(output.Summary{
			InputFile: totalsHeading,
			Source:    src,
			OutputDir: runCfg.Paths.OutputDir,
			Stats:     totals,
		}, reg, "", colorize))
	}
	return nil
}

// openRunHistory returns the snapshot store used to record runs, or nil when
// run history is disabled or unavailable.
func openRunHistory(cfg *config.Config, logger *slog.Logger) *snapshot.Store {
	if !cfg.Data.RecordRuns || strings.TrimSpace(cfg.Data.SnapshotDB) == "" {
		return nil
	}
	store, err := snapshot.Open(cfg.Data.SnapshotDB)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "run_history_unavailable",
			logging.String("path", cfg.Data.SnapshotDB),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in 'marcaroni snapshot runs'"),
		)
		return nil
	}
	return store
}

type matchJob struct {
	cfg    *config.Config
	reg    *sources.Registry
	idx    *catalog.Index
	src    sources.Source
	prefix string
	path   string
	store  *snapshot.Store
}

func (j matchJob) run(ctx context.Context, base *slog.Logger) (*output.Summary, string, error) {
	runID := uuid.NewString()
	dir := filepath.Join(j.cfg.Paths.OutputDir, textutil.FileStem(j.path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, runID, fmt.Errorf("create output directory: %w", err)
	}

	handler, closer, err := logging.NewFileHandler(filepath.Join(dir, logging.LogFileName), j.cfg.Logging.Format, j.cfg.Logging.Level)
	if err != nil {
		return nil, runID, err
	}
	defer closer.Close()
	logger := logging.WithRunID(logging.TeeLogger(base, handler), runID).With(
		logging.String(logging.FieldInputFile, j.path),
	)

	input, err := os.Open(j.path)
	if err != nil {
		return nil, runID, fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	runner, err := batch.NewRunner(j.cfg, j.reg, j.idx, logger)
	if err != nil {
		return nil, runID, err
	}
	stats := output.NewStats()
	sink, err := output.NewFileSink(dir, j.prefix, stats, logger)
	if err != nil {
		return nil, runID, err
	}

	if j.store != nil {
		run := snapshot.Run{ID: runID, InputFile: j.path, SourceID: j.src.ID, OutputDir: dir}
		if err := j.store.StartRun(ctx, run); err != nil {
			logger.Warn("failed to record run start", logging.Error(err))
		}
	}

	res, runErr := runner.Run(ctx, marc.NewReader(input), j.src, sink)
	runErr = errors.Join(runErr, sink.Close())

	if j.store != nil {
		if err := j.store.FinishRun(context.WithoutCancel(ctx), runID, res.Records, stats.CountsByName(), runErr); err != nil {
			logger.Warn("failed to record run result", logging.Error(err))
		}
	}

	summary := &output.Summary{
		InputFile: j.path,
		Source:    j.src,
		OutputDir: dir,
		Files:     sink.Files(),
		Stats:     stats,
	}
	summary.Log(logger, j.reg)
	if runErr != nil {
		logging.ErrorWithContext(logger, "batch failed", "batch_failed",
			logging.Error(runErr),
			logging.Bool("configuration_error", batch.IsConfigurationError(runErr)),
			logging.Int("records", res.Records),
		)
	}
	return summary, runID, runErr
}
