package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mutronic/marcaroni/internal/identifier"
)

var snapshotColumns = []string{"identifier", "id", "source"}

// Filter restricts which snapshot rows are loaded. An empty Tag accepts
// every row; otherwise only rows whose tag column equals Tag are kept. Kind
// selects the cleaning applied to the identifier column, unless ByTag is set,
// in which case each tagged row is cleaned according to its own tag.
type Filter struct {
	Tag   string
	Kind  identifier.Kind
	ByTag bool
}

// AllTags loads every row, cleaning each by its own tag.
func AllTags() Filter {
	return Filter{ByTag: true}
}

// FilterForField returns the filter matching an identifier field.
func FilterForField(field identifier.Field) Filter {
	return Filter{Tag: field.Tag, Kind: field.Kind}
}

// LoadStats summarises a snapshot load.
type LoadStats struct {
	Read     int
	Kept     int
	Filtered int
	Invalid  int
}

// LoadFile reads snapshot rows from a CSV file.
func LoadFile(path string, filter Filter) ([]Row, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open bib data file: %w", err)
	}
	defer file.Close()
	rows, stats, err := Load(file, filter)
	if err != nil {
		return nil, stats, fmt.Errorf("load bib data %s: %w", path, err)
	}
	return rows, stats, nil
}

// Load reads snapshot rows from CSV with the header
// identifier,id,source[,tag,subfield]. Identifiers are normalized with the
// same rules applied to incoming records; rows that fail the validity floor
// are dropped and counted as Invalid.
func Load(r io.Reader, filter Filter) ([]Row, LoadStats, error) {
	var stats LoadStats
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, nil
		}
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = idx
	}
	for _, name := range snapshotColumns {
		if _, ok := columns[name]; !ok {
			return nil, stats, fmt.Errorf("bib data header missing column %q", name)
		}
	}

	get := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	wantTag := strings.TrimSpace(filter.Tag)
	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
		stats.Read++
		tag := get(record, "tag")
		if wantTag != "" && tag != "" && tag != wantTag {
			stats.Filtered++
			continue
		}
		kind := filter.Kind
		if filter.ByTag && tag != "" {
			kind = identifier.KindForTag(tag)
		}
		value := identifier.Normalize(kind, get(record, "identifier"))
		if !identifier.Valid(value) {
			stats.Invalid++
			continue
		}
		rows = append(rows, Row{
			Identifier: value,
			Ref:        Ref{EntryID: get(record, "id"), SourceID: get(record, "source")},
			Tag:        tag,
			Subfield:   get(record, "subfield"),
		})
		stats.Kept++
	}
	return rows, stats, nil
}
