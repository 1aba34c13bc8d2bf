package output

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/logging"
	"github.com/mutronic/marcaroni/internal/marc"
	"github.com/mutronic/marcaroni/internal/match"
)

// LocalIDTag and LocalIDCode locate the annotation carrying the existing
// catalog id on records meant to overlay an entry.
const (
	LocalIDTag  = "901"
	LocalIDCode = "c"
)

// Report file names, written without the batch prefix.
const (
	AmbiguousReportName         = "report_ambiguous_records.csv"
	SupersededReportName        = "report_superseded_records.csv"
	RedundantMatchesReportName  = "report_existing_dda_records_to_hide.csv"
	RedundantIncomingReportName = "report_ddas_from_this_file_to_hide.csv"
)

var partitionSuffix = map[match.Disposition]string{
	match.Add:           "_no_matches_on_platform.mrc",
	match.MatchIsWorse:  "_match_has_worse_license.mrc",
	match.ExactMatch:    "_exact_match_same_bibsource.mrc",
	match.MatchIsBetter: "_match_has_better_license.mrc",
	match.Ignore:        "_superseded.mrc",
	match.Ambiguous:     "_ambiguous.mrc",
}

const exactIDsSuffix = "_exact_match_ids.txt"

type partition struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	writer *marc.Writer
}

type report struct {
	path   string
	file   *os.File
	csv    *csv.Writer
	header []string
}

// FileSink writes partitions and reports under one directory.
type FileSink struct {
	mu         sync.Mutex
	dir        string
	prefix     string
	partitions map[match.Disposition]*partition
	reports    map[string]*report
	ids        *report
	created    []string
	stats      *Stats
	logger     *slog.Logger
	closed     bool
}

// NewFileSink prepares dir and returns a sink whose partition files start
// with prefix.
func NewFileSink(dir, prefix string, stats *Stats, logger *slog.Logger) (*FileSink, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, errors.New("output prefix must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if stats == nil {
		stats = NewStats()
	}
	return &FileSink{
		dir:        dir,
		prefix:     prefix,
		partitions: make(map[match.Disposition]*partition),
		reports:    make(map[string]*report),
		stats:      stats,
		logger:     logging.NewComponentLogger(logger, "output"),
	}, nil
}

// Dir returns the directory the sink writes to.
func (s *FileSink) Dir() string { return s.dir }

// Stats returns the sink's counters.
func (s *FileSink) Stats() *Stats { return s.stats }

// Files returns the paths created so far, sorted.
func (s *FileSink) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.created...)
	sort.Strings(out)
	return out
}

// Add implements match.Sink.
func (s *FileSink) Add(item *match.Item) error {
	return s.write(match.Add, item)
}

// ExactMatch implements match.Sink. The record is annotated with entryID and
// the id is appended to the exact-match id list.
func (s *FileSink) ExactMatch(item *match.Item, entryID string) error {
	annotate(item, entryID)
	if err := s.write(match.ExactMatch, item); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		r, err := s.openReport(s.prefix+exactIDsSuffix, ',', nil)
		if err != nil {
			return err
		}
		s.ids = r
	}
	return writeRow(s.ids, entryID)
}

// MatchIsBetter implements match.Sink.
func (s *FileSink) MatchIsBetter(item *match.Item, _ catalog.Ref) error {
	return s.write(match.MatchIsBetter, item)
}

// MatchIsWorse implements match.Sink. The record is annotated with entryID
// so it loads as an overlay of the existing entry.
func (s *FileSink) MatchIsWorse(item *match.Item, entryID string) error {
	annotate(item, entryID)
	return s.write(match.MatchIsWorse, item)
}

// Ignore implements match.Sink.
func (s *FileSink) Ignore(item *match.Item, reason string) error {
	if err := s.write(match.Ignore, item); err != nil {
		return err
	}
	return s.reportRow(SupersededReportName, ',', reasonHeader, item.Title, strings.Join(item.Identifiers, ";"), reason)
}

// Ambiguous implements match.Sink.
func (s *FileSink) Ambiguous(item *match.Item, reason string) error {
	if err := s.write(match.Ambiguous, item); err != nil {
		return err
	}
	return s.reportRow(AmbiguousReportName, ',', reasonHeader, item.Title, strings.Join(item.Identifiers, ";"), reason)
}

// ReportRedundantMatch implements match.Sink.
func (s *FileSink) ReportRedundantMatch(platform, title string, ref catalog.Ref) error {
	s.stats.mu.Lock()
	s.stats.RedundantMatches++
	s.stats.mu.Unlock()
	return s.reportRow(RedundantMatchesReportName, '\t', nil, platform, title, ref.EntryID)
}

// ReportRedundantIncoming implements match.Sink.
func (s *FileSink) ReportRedundantIncoming(platform, title string, identifiers []string) error {
	s.stats.mu.Lock()
	s.stats.RedundantIncoming++
	s.stats.mu.Unlock()
	return s.reportRow(RedundantIncomingReportName, '\t', nil, platform, title, "", strings.Join(identifiers, ";"))
}

// Close flushes and closes every file the sink created.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, d := range match.Dispositions() {
		p, ok := s.partitions[d]
		if !ok {
			continue
		}
		if err := p.buf.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", p.path, err))
		}
		if err := p.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", p.path, err))
		}
	}
	all := make([]*report, 0, len(s.reports)+1)
	for _, r := range s.reports {
		all = append(all, r)
	}
	if s.ids != nil {
		all = append(all, s.ids)
	}
	for _, r := range all {
		r.csv.Flush()
		if err := r.csv.Error(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", r.path, err))
		}
		if err := r.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", r.path, err))
		}
	}
	return errors.Join(errs...)
}

var reasonHeader = []string{"Title", "ISBN", "Reason"}

func (s *FileSink) write(d match.Disposition, item *match.Item) error {
	if item == nil || item.Record == nil {
		return fmt.Errorf("%s: missing record", d)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("output sink is closed")
	}
	p, err := s.partition(d)
	if err != nil {
		return err
	}
	if err := p.writer.Write(item.Record); err != nil {
		return fmt.Errorf("%s: %w", p.path, err)
	}
	s.stats.count(d)
	return nil
}

func (s *FileSink) partition(d match.Disposition) (*partition, error) {
	if p, ok := s.partitions[d]; ok {
		return p, nil
	}
	suffix, ok := partitionSuffix[d]
	if !ok {
		return nil, fmt.Errorf("no partition for disposition %q", d)
	}
	path := filepath.Join(s.dir, s.prefix+suffix)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create partition: %w", err)
	}
	buf := bufio.NewWriter(file)
	p := &partition{path: path, file: file, buf: buf, writer: marc.NewWriter(buf)}
	s.partitions[d] = p
	s.created = append(s.created, path)
	s.logger.Debug("partition opened", logging.String("path", path), logging.String("disposition", string(d)))
	return p, nil
}

func (s *FileSink) reportRow(name string, comma rune, header []string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[name]
	if !ok {
		var err error
		r, err = s.openReport(name, comma, header)
		if err != nil {
			return err
		}
		s.reports[name] = r
	}
	return writeRow(r, values...)
}

func (s *FileSink) openReport(name string, comma rune, header []string) (*report, error) {
	path := filepath.Join(s.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	w := csv.NewWriter(file)
	w.Comma = comma
	r := &report{path: path, file: file, csv: w, header: header}
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("write %s header: %w", name, err)
		}
	}
	s.created = append(s.created, path)
	return r, nil
}

func writeRow(r *report, values ...string) error {
	if err := r.csv.Write(values); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

func annotate(item *match.Item, entryID string) {
	if item == nil || item.Record == nil || entryID == "" {
		return
	}
	item.Record.AddField(marc.NewDataField(LocalIDTag, ' ', ' ', LocalIDCode, entryID))
}
