package output

import (
	"sort"
	"sync"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/match"
)

// Stats accumulates counters for one batch.
type Stats struct {
	mu sync.Mutex

	Records           int
	Counts            map[match.Disposition]int
	MatchesBySource   map[string]int
	RedundantMatches  int
	RedundantIncoming int
	Malformed         int
	NoIdentifier      int
	MissingField      int
	Unreadable        int
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{
		Counts:          make(map[match.Disposition]int),
		MatchesBySource: make(map[string]int),
	}
}

func (s *Stats) count(d match.Disposition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Counts[d]++
}

// CountRecord records that one more input record was read.
func (s *Stats) CountRecord() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records++
}

// CountMatches adds every candidate to the matches-by-source histogram.
func (s *Stats) CountMatches(refs []catalog.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		s.MatchesBySource[ref.SourceID]++
	}
}

// CountMalformed adds n identifiers of unexpected length.
func (s *Stats) CountMalformed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Malformed += n
}

// CountNoIdentifier records a record without a usable identifier.
func (s *Stats) CountNoIdentifier() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NoIdentifier++
}

// CountMissingField records a record lacking the required field.
func (s *Stats) CountMissingField() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MissingField++
}

// CountUnreadable records a record that could not be decoded.
func (s *Stats) CountUnreadable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unreadable++
}

// Count returns the number of records given disposition d.
func (s *Stats) Count(d match.Disposition) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Counts[d]
}

// CountsByName returns the disposition counters keyed by disposition name.
func (s *Stats) CountsByName() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.Counts))
	for d, n := range s.Counts {
		out[string(d)] = n
	}
	return out
}

// Disposed returns the total number of disposition calls.
func (s *Stats) Disposed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

// SourceCount is one row of the matches-by-source histogram.
type SourceCount struct {
	SourceID string
	Count    int
}

// SourceCounts returns the histogram sorted by count descending, then by
// source id.
func (s *Stats) SourceCounts() []SourceCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SourceCount, 0, len(s.MatchesBySource))
	for id, n := range s.MatchesBySource {
		out = append(out, SourceCount{SourceID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out
}

// Merge adds other's counters into s.
func (s *Stats) Merge(other *Stats) {
	if other == nil || other == s {
		return
	}
	other.mu.Lock()
	defer other.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records += other.Records
	for d, n := range other.Counts {
		s.Counts[d] += n
	}
	for id, n := range other.MatchesBySource {
		s.MatchesBySource[id] += n
	}
	s.RedundantMatches += other.RedundantMatches
	s.RedundantIncoming += other.RedundantIncoming
	s.Malformed += other.Malformed
	s.NoIdentifier += other.NoIdentifier
	s.MissingField += other.MissingField
	s.Unreadable += other.Unreadable
}
