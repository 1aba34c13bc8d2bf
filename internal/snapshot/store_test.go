package snapshot_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/snapshot"
)

func openStore(t *testing.T) *snapshot.Store {
	t.Helper()
	store, err := snapshot.Open(filepath.Join(t.TempDir(), "nested", "snapshot.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestReplaceIdentifiersAndRows(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if _, err := store.LatestImport(ctx); !errors.Is(err, snapshot.ErrNoImport) {
		t.Fatalf("expected ErrNoImport, got %v", err)
	}

	first := []catalog.Row{
		{Identifier: "9781234567897", Ref: catalog.Ref{EntryID: "100", SourceID: "37"}, Tag: "020", Subfield: "a"},
		{Identifier: "ocolc12345678", Ref: catalog.Ref{EntryID: "100", SourceID: "37"}, Tag: "035", Subfield: "a"},
	}
	if _, err := store.ReplaceIdentifiers(ctx, "bib-data.csv", first, catalog.LoadStats{Read: 2, Kept: 2}); err != nil {
		t.Fatalf("ReplaceIdentifiers: %v", err)
	}
	second := []catalog.Row{
		{Identifier: "9780000000002", Ref: catalog.Ref{EntryID: "300", SourceID: "50"}, Tag: "020", Subfield: "z"},
	}
	imp, err := store.ReplaceIdentifiers(ctx, "bib-data-2.csv", second, catalog.LoadStats{Read: 3, Kept: 1, Invalid: 2})
	if err != nil {
		t.Fatalf("ReplaceIdentifiers: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected previous import replaced, count=%d err=%v", n, err)
	}
	latest, err := store.LatestImport(ctx)
	if err != nil {
		t.Fatalf("LatestImport: %v", err)
	}
	if latest.ID != imp.ID || latest.SourceFile != "bib-data-2.csv" || latest.Stats.Invalid != 2 {
		t.Fatalf("unexpected latest import %+v", latest)
	}
	if time.Since(latest.ImportedAt) > time.Minute {
		t.Fatalf("unexpected import time %s", latest.ImportedAt)
	}

	rows, err := store.Rows(ctx, "020")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 || rows[0] != second[0] {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows, _ := store.Rows(ctx, "035"); len(rows) != 0 {
		t.Fatalf("expected no 035 rows, got %+v", rows)
	}
}

func TestReplaceIdentifiersRejectsEmpty(t *testing.T) {
	store := openStore(t)
	if _, err := store.ReplaceIdentifiers(context.Background(), "empty.csv", nil, catalog.LoadStats{}); !errors.Is(err, catalog.ErrEmptySnapshot) {
		t.Fatalf("expected ErrEmptySnapshot, got %v", err)
	}
}

func TestRunHistory(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	run := snapshot.Run{ID: "run-1", InputFile: "batch.mrc", SourceID: "37", OutputDir: "/tmp/out", StartedAt: time.Now().Add(-time.Minute)}
	if err := store.StartRun(ctx, run); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := store.StartRun(ctx, snapshot.Run{ID: "run-2", InputFile: "other.mrc", SourceID: "42"}); err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", 3, map[string]int{"add": 2, "ambiguous": 1}, nil); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := store.FinishRun(ctx, "run-2", 0, nil, errors.New("missing required field")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := store.FinishRun(ctx, "nope", 0, nil, nil); err == nil {
		t.Fatal("expected error for unknown run")
	}

	runs, err := store.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" {
		t.Fatalf("expected newest first, got %+v", runs)
	}
	if runs[0].Status != snapshot.RunFailed || runs[0].Error != "missing required field" {
		t.Fatalf("unexpected failed run %+v", runs[0])
	}
	if runs[1].Status != snapshot.RunCompleted || runs[1].Counts["add"] != 2 || runs[1].Records != 3 {
		t.Fatalf("unexpected completed run %+v", runs[1])
	}
	if limited, _ := store.Runs(ctx, 1); len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}
