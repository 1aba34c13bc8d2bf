package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mutronic/marcaroni/internal/output"
	"github.com/mutronic/marcaroni/internal/sources"
)

func renderSummary(summary output.Summary, reg *sources.Registry, runID string, colorize bool) string {
	var b strings.Builder
	for _, line := range renderSectionHeader(filepath.Base(summary.InputFile), colorize) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	records := 0
	if summary.Stats != nil {
		records = summary.Stats.Records
	}
	src := summary.Source
	if runID != "" {
		b.WriteString(renderStatusLine("Run", statusInfo, runID, colorize) + "\n")
	}
	b.WriteString(renderStatusLine("Source", statusInfo, fmt.Sprintf("%s (%s, %s, %s)", src.Name, src.ID, src.Platform, src.License), colorize) + "\n")
	b.WriteString(renderStatusLine("Records", statusInfo, strconv.Itoa(records), colorize) + "\n")
	b.WriteString(renderStatusLine("Output", statusInfo, summary.OutputDir, colorize) + "\n")

	lines := summary.Lines()
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []string{line.Label, strconv.Itoa(line.Count)})
	}
	b.WriteString(renderTable(tableSpec{
		Title:   "Dispositions",
		Headers: []string{"Outcome", "Records"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight},
	}))
	b.WriteByte('\n')

	bySource := summary.BySource(reg)
	if len(bySource) > 0 {
		rows = rows[:0]
		total := 0
		for _, line := range bySource {
			rows = append(rows, []string{line.SourceID, line.Name, line.Platform, strconv.Itoa(line.Count)})
			total += line.Count
		}
		b.WriteString(renderTable(tableSpec{
			Title:   "Matches by source",
			Headers: []string{"Source", "Name", "Platform", "Matches"},
			Rows:    rows,
			Footer:  []string{"", "", "Total", strconv.Itoa(total)},
			Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
		}))
		b.WriteByte('\n')
	}

	if len(summary.Files) > 0 {
		b.WriteString("Files:\n")
		for _, path := range summary.Files {
			b.WriteString("  " + filepath.Base(path) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
