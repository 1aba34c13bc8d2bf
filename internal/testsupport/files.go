package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/mutronic/marcaroni/internal/marc"
)

// SourceRow is one line of a sources CSV fixture.
type SourceRow struct {
	ID       string
	Name     string
	Platform string
	License  string
}

// DefaultSources covers every license tier on two shared platforms plus a
// standalone one.
var DefaultSources = []SourceRow{
	{ID: "37", Name: "ProQuest DDA", Platform: "ebookcentral", License: "dda"},
	{ID: "42", Name: "ProQuest Purchased", Platform: "ebookcentral", License: "purchased"},
	{ID: "43", Name: "ProQuest EBA", Platform: "ebookcentral", License: "eba"},
	{ID: "44", Name: "ProQuest Subscription", Platform: "ebookcentral", License: "subscription"},
	{ID: "50", Name: "EBSCO DDA", Platform: "ebsco", License: "dda"},
	{ID: "51", Name: "EBSCO Purchased", Platform: "ebsco", License: "purchased"},
	{ID: "61", Name: "OAPEN", Platform: "oapen", License: "oa"},
}

// BibRow is one line of a bib-data CSV fixture.
type BibRow struct {
	Identifier string
	EntryID    string
	SourceID   string
	Tag        string
	Subfield   string
}

// WriteSourcesCSV writes a sources CSV with a header row.
func WriteSourcesCSV(t testing.TB, path string, rows ...SourceRow) {
	t.Helper()
	records := [][]string{{"id", "name", "platform", "license"}}
	for _, r := range rows {
		records = append(records, []string{r.ID, r.Name, r.Platform, r.License})
	}
	writeCSV(t, path, records)
}

// WriteBibDataCSV writes a bib-data CSV with a header row. Empty tags are
// written as 020.
func WriteBibDataCSV(t testing.TB, path string, rows ...BibRow) {
	t.Helper()
	records := [][]string{{"identifier", "id", "source", "tag", "subfield"}}
	for _, r := range rows {
		tag := r.Tag
		if tag == "" {
			tag = "020"
		}
		subfield := r.Subfield
		if subfield == "" {
			subfield = "a"
		}
		records = append(records, []string{r.Identifier, r.EntryID, r.SourceID, tag, subfield})
	}
	writeCSV(t, path, records)
}

func writeCSV(t testing.TB, path string, records [][]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Book builds a record with a 245 title and one 020 $a per ISBN.
func Book(title string, isbns ...string) *marc.Record {
	rec := marc.NewRecord()
	rec.AddField(marc.NewControlField("001", "ocm"+title))
	rec.AddField(marc.NewDataField("245", '0', '0', "a", title))
	for _, isbn := range isbns {
		rec.AddField(marc.NewDataField("020", ' ', ' ', "a", isbn))
	}
	return rec
}

// WriteMARC serializes records to path.
func WriteMARC(t testing.TB, path string, records ...*marc.Record) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := marc.NewWriter(f)
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("write record: %v", err)
		}
	}
}

// ReadMARC returns every record in path; a missing file yields nil.
func ReadMARC(t testing.TB, path string) []*marc.Record {
	t.Helper()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := marc.ReadAll(f)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return recs
}
