package output

import (
	"log/slog"

	"github.com/mutronic/marcaroni/internal/logging"
	"github.com/mutronic/marcaroni/internal/match"
	"github.com/mutronic/marcaroni/internal/sources"
)

// Line is one labelled counter in a batch summary.
type Line struct {
	Label string
	Count int
}

// SourceLine is one row of the matches-by-source section.
type SourceLine struct {
	SourceID string
	Name     string
	Platform string
	Count    int
}

// Label returns the operator-facing description of d.
func Label(d match.Disposition) string {
	switch d {
	case match.Add:
		return "not found on this platform"
	case match.MatchIsWorse:
		return "found same platform, worse license"
	case match.ExactMatch:
		return "found same platform, same license"
	case match.MatchIsBetter:
		return "found same platform, better license"
	case match.Ignore:
		return "superseded or already satisfied"
	case match.Ambiguous:
		return "ambiguous"
	default:
		return string(d)
	}
}

// Summary describes the outcome of one batch.
type Summary struct {
	InputFile string
	Source    sources.Source
	OutputDir string
	Files     []string
	Stats     *Stats
}

// Lines returns the disposition counters followed by the non-zero side
// channel and identifier counters.
func (s Summary) Lines() []Line {
	stats := s.Stats
	if stats == nil {
		stats = NewStats()
	}
	lines := make([]Line, 0, 10)
	for _, d := range match.Dispositions() {
		lines = append(lines, Line{Label: Label(d), Count: stats.Count(d)})
	}
	optional := []Line{
		{Label: "existing DDA records to hide", Count: stats.RedundantMatches},
		{Label: "DDA records from this batch to hide", Count: stats.RedundantIncoming},
		{Label: "records without a usable identifier", Count: stats.NoIdentifier},
		{Label: "records missing the required field", Count: stats.MissingField},
		{Label: "identifiers of unexpected length", Count: stats.Malformed},
		{Label: "records that could not be decoded", Count: stats.Unreadable},
	}
	for _, line := range optional {
		if line.Count > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// BySource resolves the matches-by-source histogram against reg. Unknown
// ids keep an empty name.
func (s Summary) BySource(reg *sources.Registry) []SourceLine {
	if s.Stats == nil {
		return nil
	}
	counts := s.Stats.SourceCounts()
	out := make([]SourceLine, 0, len(counts))
	for _, c := range counts {
		line := SourceLine{SourceID: c.SourceID, Count: c.Count}
		if src, ok := reg.Get(c.SourceID); ok {
			line.Name = src.Name
			line.Platform = src.Platform
		}
		out = append(out, line)
	}
	return out
}

// Log writes the summary to logger at info level.
func (s Summary) Log(logger *slog.Logger, reg *sources.Registry) {
	if logger == nil {
		return
	}
	records := 0
	if s.Stats != nil {
		records = s.Stats.Records
	}
	logger.Info("batch summary",
		logging.String(logging.FieldInputFile, s.InputFile),
		logging.String(logging.FieldSourceID, s.Source.ID),
		logging.Int("records", records),
		logging.String("output_dir", s.OutputDir),
	)
	for _, line := range s.Lines() {
		logger.Info("disposition count", logging.String("label", line.Label), logging.Int("count", line.Count))
	}
	for _, line := range s.BySource(reg) {
		logger.Info("matches by source",
			logging.String(logging.FieldSourceID, line.SourceID),
			logging.String("name", line.Name),
			logging.Int("count", line.Count),
		)
	}
}
