package output_test

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/marc"
	"github.com/mutronic/marcaroni/internal/match"
	"github.com/mutronic/marcaroni/internal/output"
	"github.com/mutronic/marcaroni/internal/sources"
)

func newItem(title string, ids ...string) *match.Item {
	rec := marc.NewRecord()
	rec.AddField(marc.NewDataField("245", '0', '0', "a", title))
	for _, id := range ids {
		rec.AddField(marc.NewDataField("020", ' ', ' ', "a", id))
	}
	return &match.Item{Record: rec, Title: title, Identifiers: ids}
}

func readRecords(t *testing.T, path string) []*marc.Record {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	r := marc.NewReader(file)
	var out []*marc.Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		out = append(out, rec)
	}
}

func readCSV(t *testing.T, path string, comma rune) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.Comma = comma
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv %s: %v", path, err)
	}
	return rows
}

func TestFileSinkPartitions(t *testing.T) {
	dir := t.TempDir()
	sink, err := output.NewFileSink(dir, "proquest_dda", nil, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	steps := []error{
		sink.Add(newItem("Added", "9780000000001")),
		sink.Add(newItem("Added again", "9780000000002")),
		sink.ExactMatch(newItem("Exact", "9780000000003"), "100"),
		sink.MatchIsWorse(newItem("Worse", "9780000000004"), "200"),
		sink.Ambiguous(newItem("Unclear", "9780000000005", "9780000000006"), "multiple matches"),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := readRecords(t, filepath.Join(dir, "proquest_dda_no_matches_on_platform.mrc")); len(got) != 2 {
		t.Fatalf("expected 2 added records, got %d", len(got))
	}
	exact := readRecords(t, filepath.Join(dir, "proquest_dda_exact_match_same_bibsource.mrc"))
	if len(exact) != 1 || !reflect.DeepEqual(exact[0].SubfieldValues("901", "c"), []string{"100"}) {
		t.Fatalf("expected exact match annotated with 901$c 100")
	}
	worse := readRecords(t, filepath.Join(dir, "proquest_dda_match_has_worse_license.mrc"))
	if len(worse) != 1 || !reflect.DeepEqual(worse[0].SubfieldValues("901", "c"), []string{"200"}) {
		t.Fatalf("expected worse match annotated with 901$c 200")
	}
	ids, err := os.ReadFile(filepath.Join(dir, "proquest_dda_exact_match_ids.txt"))
	if err != nil || string(ids) != "100\n" {
		t.Fatalf("unexpected exact ids file %q (%v)", ids, err)
	}
	rows := readCSV(t, filepath.Join(dir, output.AmbiguousReportName), ',')
	want := [][]string{{"Title", "ISBN", "Reason"}, {"Unclear", "9780000000005;9780000000006", "multiple matches"}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("ambiguous report = %v, want %v", rows, want)
	}

	for _, absent := range []string{
		"proquest_dda_match_has_better_license.mrc",
		"proquest_dda_superseded.mrc",
		output.RedundantMatchesReportName,
		output.SupersededReportName,
	} {
		if _, err := os.Stat(filepath.Join(dir, absent)); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s to be absent, stat err=%v", absent, err)
		}
	}

	stats := sink.Stats()
	if stats.Count(match.Add) != 2 || stats.Count(match.ExactMatch) != 1 || stats.Disposed() != 5 {
		t.Fatalf("unexpected stats %+v", stats.Counts)
	}
	if len(sink.Files()) != 6 {
		t.Fatalf("expected 6 files, got %v", sink.Files())
	}
}

func TestFileSinkSideChannelReports(t *testing.T) {
	dir := t.TempDir()
	sink, err := output.NewFileSink(dir, "batch", nil, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	if err := sink.ReportRedundantMatch("ebsco", "Pasta", catalog.Ref{EntryID: "300", SourceID: "50"}); err != nil {
		t.Fatalf("ReportRedundantMatch: %v", err)
	}
	if err := sink.ReportRedundantIncoming("ebookcentral", "Pasta", []string{"9781234567897"}); err != nil {
		t.Fatalf("ReportRedundantIncoming: %v", err)
	}
	if err := sink.Ignore(newItem("Pasta", "9781234567897"), "superseded by better license"); err != nil {
		t.Fatalf("Ignore: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if rows := readCSV(t, filepath.Join(dir, output.RedundantMatchesReportName), '\t'); !reflect.DeepEqual(rows, [][]string{{"ebsco", "Pasta", "300"}}) {
		t.Fatalf("unexpected redundant match report %v", rows)
	}
	if rows := readCSV(t, filepath.Join(dir, output.RedundantIncomingReportName), '\t'); !reflect.DeepEqual(rows, [][]string{{"ebookcentral", "Pasta", "", "9781234567897"}}) {
		t.Fatalf("unexpected redundant incoming report %v", rows)
	}
	rows := readCSV(t, filepath.Join(dir, output.SupersededReportName), ',')
	if len(rows) != 2 || rows[1][2] != "superseded by better license" {
		t.Fatalf("unexpected superseded report %v", rows)
	}
	if sink.Stats().RedundantMatches != 1 || sink.Stats().RedundantIncoming != 1 {
		t.Fatalf("unexpected side channel counters %+v", sink.Stats())
	}
}

func TestFileSinkRejectsWritesAfterClose(t *testing.T) {
	sink, err := output.NewFileSink(t.TempDir(), "batch", nil, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sink.Add(newItem("Late")); err == nil {
		t.Fatal("expected error after close")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close should be a no-op: %v", err)
	}
}

func TestSummary(t *testing.T) {
	stats := output.NewStats()
	stats.CountMatches([]catalog.Ref{{EntryID: "1", SourceID: "42"}, {EntryID: "2", SourceID: "37"}})
	stats.CountMatches([]catalog.Ref{{EntryID: "3", SourceID: "42"}, {EntryID: "4", SourceID: "50"}})
	stats.CountNoIdentifier()

	reg, err := sources.Load(strings.NewReader("id,name,platform,license\n37,ProQuest DDA,ebookcentral,dda\n42,ProQuest Purchased,ebookcentral,purchased\n"))
	if err != nil {
		t.Fatalf("sources.Load: %v", err)
	}
	summary := output.Summary{Stats: stats}
	by := summary.BySource(reg)
	if len(by) != 3 || by[0].SourceID != "42" || by[0].Count != 2 || by[0].Name != "ProQuest Purchased" {
		t.Fatalf("unexpected histogram %+v", by)
	}
	if by[1].SourceID != "37" || by[2].SourceID != "50" || by[2].Name != "" {
		t.Fatalf("expected ties ordered by source id, got %+v", by)
	}
	lines := summary.Lines()
	if len(lines) != len(match.Dispositions())+1 {
		t.Fatalf("expected disposition lines plus one optional line, got %+v", lines)
	}
	if last := lines[len(lines)-1]; last.Label != "records without a usable identifier" || last.Count != 1 {
		t.Fatalf("unexpected optional line %+v", last)
	}
}

func TestStatsMerge(t *testing.T) {
	a, b := output.NewStats(), output.NewStats()
	a.CountRecord()
	b.CountRecord()
	b.CountMatches([]catalog.Ref{{EntryID: "1", SourceID: "42"}})
	a.Merge(b)
	if a.Records != 2 || a.MatchesBySource["42"] != 1 {
		t.Fatalf("unexpected merged stats %+v", a)
	}
}
