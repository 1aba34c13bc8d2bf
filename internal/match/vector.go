package match

import (
	"fmt"

	"github.com/mutronic/marcaroni/internal/catalog"
	"github.com/mutronic/marcaroni/internal/license"
	"github.com/mutronic/marcaroni/internal/marc"
	"github.com/mutronic/marcaroni/internal/sources"
)

// Vector holds the facts describing one candidate relative to the input
// source.
type Vector struct {
	MatchIsWeakestTier    bool
	MatchIsSamePlatform   bool
	MatchHasBetterLicense bool
}

// Compute derives the Vector for a candidate loaded under candidate, against
// a record arriving from input.
func Compute(candidate, input sources.Source) Vector {
	return Vector{
		MatchIsWeakestTier:    candidate.License.IsWeakest(),
		MatchIsSamePlatform:   candidate.Platform == input.Platform,
		MatchHasBetterLicense: license.Better(candidate.License, input.License),
	}
}

// Candidate is an existing catalog entry sharing an identifier with the
// record being matched.
type Candidate struct {
	Ref    catalog.Ref
	Source sources.Source
	Vector Vector
}

// Item is one incoming record with its identifiers already extracted.
type Item struct {
	Record      *marc.Record
	Title       string
	Identifiers []string
	Position    int
}

// Input is everything a rule may inspect for one record.
type Input struct {
	Item       *Item
	Source     sources.Source
	Candidates []Candidate
}

// NewInput resolves each ref's source through reg and computes its Vector.
// Candidates are ordered by ref so rule evaluation never depends on lookup
// order.
func NewInput(item *Item, input sources.Source, refs []catalog.Ref, reg *sources.Registry) (*Input, error) {
	sorted := make([]catalog.Ref, len(refs))
	copy(sorted, refs)
	catalog.SortRefs(sorted)

	in := &Input{Item: item, Source: input, Candidates: make([]Candidate, 0, len(sorted))}
	for _, ref := range sorted {
		src, ok := reg.Get(ref.SourceID)
		if !ok {
			return nil, fmt.Errorf("candidate %s: %w: %s", ref.EntryID, sources.ErrUnknownSource, ref.SourceID)
		}
		in.Candidates = append(in.Candidates, Candidate{Ref: ref, Source: src, Vector: Compute(src, input)})
	}
	return in, nil
}

// InputIsWeakest reports whether the record's own source is of the weakest
// tier.
func (in *Input) InputIsWeakest() bool {
	return in.Source.License.IsWeakest()
}

// AnyBetter reports whether any candidate has a strictly better license.
func (in *Input) AnyBetter() bool {
	for _, c := range in.Candidates {
		if c.Vector.MatchHasBetterLicense {
			return true
		}
	}
	return false
}

// SamePlatform returns the candidates on the input's platform.
func (in *Input) SamePlatform() []Candidate {
	var out []Candidate
	for _, c := range in.Candidates {
		if c.Vector.MatchIsSamePlatform {
			out = append(out, c)
		}
	}
	return out
}

// Better returns the candidates with a strictly better license.
func (in *Input) Better() []Candidate {
	var out []Candidate
	for _, c := range in.Candidates {
		if c.Vector.MatchHasBetterLicense {
			out = append(out, c)
		}
	}
	return out
}

// Refs returns the candidate refs in order.
func (in *Input) Refs() []catalog.Ref {
	out := make([]catalog.Ref, len(in.Candidates))
	for i, c := range in.Candidates {
		out[i] = c.Ref
	}
	return out
}

func (in *Input) title() string {
	if in.Item == nil {
		return ""
	}
	return in.Item.Title
}
