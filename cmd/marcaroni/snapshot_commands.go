package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/config"
	"github.com/mutronic/marcaroni/internal/logging"
	"github.com/mutronic/marcaroni/internal/snapshot"
	"github.com/mutronic/marcaroni/internal/sources"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage the SQLite catalog snapshot and run history",
	}
	cmd.AddCommand(newSnapshotImportCommand(ctx))
	cmd.AddCommand(newSnapshotStatusCommand(ctx))
	cmd.AddCommand(newSnapshotRunsCommand(ctx))
	return cmd
}

func newSnapshotImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import [FILE]",
		Short: "Load a bib-data CSV into the snapshot database",
		Long: `Import replaces the identifiers stored in the snapshot database with the
rows of a bib-data CSV (default: data.bib_data_file). Every row is kept
regardless of tag so per-source identifier fields can be matched later.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "snapshot")

			path := cfg.Data.BibDataFile
			if len(args) == 1 {
				if path, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve bib data path: %w", err)
				}
			}

			rows, stats, err := catalog.LoadFile(path, catalog.AllTags())
			if err != nil {
				return err
			}
			idx, err := catalog.Build(rows)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reg, err := sources.LoadFile(cfg.Data.SourcesFile)
			if err != nil {
				return err
			}
			if err := idx.ValidateSources(reg); err != nil {
				return err
			}

			store, err := snapshot.Open(cfg.Data.SnapshotDB)
			if err != nil {
				return err
			}
			defer store.Close()

			imp, err := store.ReplaceIdentifiers(cmd.Context(), path, rows, stats)
			if err != nil {
				return err
			}
			logger.Info("snapshot imported",
				logging.String("source_file", path),
				logging.String("database", store.Path()),
				logging.Int("rows_read", stats.Read),
				logging.Int("rows_kept", stats.Kept),
				logging.Int("rows_invalid", stats.Invalid),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d identifiers from %s into %s\n", imp.Stats.Kept, path, store.Path())
			if imp.Stats.Invalid > 0 {
				fmt.Fprintf(out, "Skipped %d rows without a usable identifier\n", imp.Stats.Invalid)
			}
			if !cfg.UsesSQLiteSnapshot() {
				fmt.Fprintf(out, "Note: data.snapshot_backend is %q; set it to %q to match against this database\n", cfg.Data.SnapshotBackend, config.SnapshotBackendSQLite)
			}
			return nil
		},
	}
}

func newSnapshotStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show snapshot row count and age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Snapshot", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Backend", statusInfo, cfg.Data.SnapshotBackend, colorize))

			if _, err := os.Stat(cfg.Data.SnapshotDB); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, renderStatusLine("Database", statusWarn, cfg.Data.SnapshotDB+" (not created)", colorize))
				return nil
			}
			store, err := snapshot.Open(cfg.Data.SnapshotDB)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(out, renderStatusLine("Database", statusOK, store.Path(), colorize))

			imp, err := store.LatestImport(cmd.Context())
			if errors.Is(err, snapshot.ErrNoImport) {
				fmt.Fprintln(out, renderStatusLine("Last import", statusWarn, "never", colorize))
				return nil
			}
			if err != nil {
				return err
			}
			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			fresh := catalog.CheckFreshness(imp.ImportedAt, time.Now(), cfg.MaxAge())
			kind := statusOK
			detail := fmt.Sprintf("%s (%s ago)", imp.ImportedAt.Local().Format(time.RFC3339), fresh.Age.Round(time.Minute))
			if fresh.Stale {
				kind = statusWarn
				if cfg.Data.StalePolicy == config.StalePolicyFail {
					kind = statusError
				}
				detail += " stale"
			}
			fmt.Fprintln(out, renderStatusLine("Last import", kind, detail, colorize))
			fmt.Fprintln(out, renderStatusLine("Imported from", statusInfo, imp.SourceFile, colorize))
			fmt.Fprintln(out, renderStatusLine("Identifiers", statusInfo, strconv.Itoa(count), colorize))
			return nil
		},
	}
}

func newSnapshotRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded match runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.Data.SnapshotDB); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			store, err := snapshot.Open(cfg.Data.SnapshotDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.InputFile,
					run.SourceID,
					strconv.Itoa(run.Records),
					runStatus(run),
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Headers: []string{"Run", "Started", "Input", "Source", "Records", "Status"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runStatus(run snapshot.Run) string {
	if run.Status == snapshot.RunFailed && run.Error != "" {
		msg := run.Error
		if len(msg) > 60 {
			msg = strings.TrimSpace(msg[:57]) + "..."
		}
		return run.Status + ": " + msg
	}
	return run.Status
}
