package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/config"
	"github.com/mutronic/marcaroni/internal/snapshot"
	"github.com/mutronic/marcaroni/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "sources.csv")
	if err := os.WriteFile(f, []byte("id\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckFileReadable("sources", f); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	if r := CheckFileReadable("sources", dir); r.Passed {
		t.Fatal("expected failure for directory")
	}
	if r := CheckFileReadable("sources", ""); r.Passed || r.Detail != "not configured" {
		t.Fatalf("expected not configured, got %+v", r)
	}
}

func TestCheckSnapshotFileStaleness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bib-data.csv")
	testsupport.WriteBibDataCSV(t, path, testsupport.BibRow{Identifier: "9781111111111", EntryID: "1", SourceID: "42"})
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	now := time.Now()

	warn := CheckSnapshotFile(path, 24*time.Hour, false, now)
	if !warn.Passed || !warn.Warning || !strings.Contains(warn.Detail, "stale") {
		t.Fatalf("expected passing warning, got %+v", warn)
	}
	fail := CheckSnapshotFile(path, 24*time.Hour, true, now)
	if fail.Passed {
		t.Fatalf("expected failure under fail policy, got %+v", fail)
	}
	if r := CheckSnapshotFile(path, 0, true, now); !r.Passed || r.Warning {
		t.Fatalf("expected zero max age to disable the check, got %+v", r)
	}
}

func TestCheckSnapshotStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.db")

	if r := CheckSnapshotStore(ctx, path, time.Hour, true, time.Now()); r.Passed {
		t.Fatal("expected failure for missing database")
	}

	store, err := snapshot.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r := CheckSnapshotStore(ctx, path, time.Hour, true, time.Now()); r.Passed {
		t.Fatal("expected failure for database without import")
	}
	rows := []catalog.Row{{Identifier: "9781111111111", Ref: catalog.Ref{EntryID: "1", SourceID: "42"}, Tag: "020"}}
	if _, err := store.ReplaceIdentifiers(ctx, "bib-data.csv", rows, catalog.LoadStats{Read: 1, Kept: 1}); err != nil {
		t.Fatalf("ReplaceIdentifiers: %v", err)
	}
	_ = store.Close()

	if r := CheckSnapshotStore(ctx, path, time.Hour, true, time.Now()); !r.Passed {
		t.Fatalf("expected fresh import to pass, got %s", r.Detail)
	}
	if r := CheckSnapshotStore(ctx, path, time.Hour, true, time.Now().Add(2*time.Hour)); r.Passed {
		t.Fatal("expected stale import to fail")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSources(), testsupport.WithBibData(
		testsupport.BibRow{Identifier: "9781111111111", EntryID: "1", SourceID: "42"},
	))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg, time.Now())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}

	cfg.Data.SnapshotBackend = config.SnapshotBackendSQLite
	err := Err(RunAll(context.Background(), cfg, time.Now()))
	if err == nil || !strings.Contains(err.Error(), "Catalog snapshot") {
		t.Fatalf("expected snapshot failure for empty sqlite backend, got %v", err)
	}
	if got := Warnings(nil); got != nil {
		t.Fatalf("expected no warnings, got %v", got)
	}
}
