package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mutronic/marcaroni/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Snapshot", statusError, "missing", false)
	want := fmt.Sprintf("  %-*s %s", statusLabelWidth, "Snapshot:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Snapshot", statusOK, "fresh", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader(" batch-01 ", false)
	if len(lines) != 2 || lines[0] != "== batch-01 ==" || lines[1] != strings.Repeat("-", len("== batch-01 ==")) {
		t.Fatalf("unexpected header %q", lines)
	}
}

func TestPreflightLines(t *testing.T) {
	lines := preflightLines([]preflight.Result{
		{Name: "Output directory", Passed: true, Detail: "ok"},
		{Name: "Catalog snapshot", Passed: true, Warning: true, Detail: "stale"},
		{Name: "Sources file", Detail: "missing"},
	}, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, want := range []string{"[OK] ok", "[WARN] stale", "[ERROR] missing"} {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d: expected %q in %q", i, want, lines[i])
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTableFooter(t *testing.T) {
	got := renderTable(tableSpec{
		Title:   "Matches by source",
		Headers: []string{"Source", "Matches"},
		Rows:    [][]string{{"42", "3"}},
		Footer:  []string{"Total", "3"},
	})
	for _, want := range []string{"Matches by source", "SOURCE", "TOTAL"} {
		if !strings.Contains(strings.ToUpper(got), strings.ToUpper(want)) {
			t.Fatalf("expected %q in table\n%s", want, got)
		}
	}
	if renderTable(tableSpec{}) != "" {
		t.Fatal("expected empty table for no headers")
	}
}
