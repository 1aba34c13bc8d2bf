package sources

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var requiredColumns = []string{"id", "name", "platform", "license"}

// LoadFile reads a sources CSV from path.
func LoadFile(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	reg, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("load sources %s: %w", path, err)
	}
	return reg, nil
}

// Load reads sources from CSV with a header row naming at least id, name,
// platform and license. Column order is free.
func Load(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("sources file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}
		field := func(name string) string {
			idx := columns[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		src, err := NewSource(field("id"), field("name"), field("platform"), field("license"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := reg.Add(src); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return reg, nil
}

func indexColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[key]; !seen {
			columns[key] = idx
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("sources header missing column %q", name)
		}
	}
	return columns, nil
}

func blankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
