package match

import (
	"fmt"

	"github.com/mutronic/marcaroni/internal/catalog"
)

// Disposition is the terminal classification of one record.
type Disposition string

const (
	Add           Disposition = "add"
	ExactMatch    Disposition = "exact_match"
	MatchIsBetter Disposition = "match_is_better"
	MatchIsWorse  Disposition = "match_is_worse"
	Ignore        Disposition = "ignore"
	Ambiguous     Disposition = "ambiguous"
)

// Dispositions lists every disposition in report order.
func Dispositions() []Disposition {
	return []Disposition{Add, MatchIsWorse, ExactMatch, MatchIsBetter, Ignore, Ambiguous}
}

// Decision is the outcome of dispatching one record.
type Decision struct {
	Disposition Disposition
	// Ref is the catalog entry the decision refers to, when there is one.
	Ref    catalog.Ref
	Reason string
	// Rule names the rule that claimed the record.
	Rule string
}

// Sink receives exactly one disposition call per record plus optional
// side-channel reports.
type Sink interface {
	Add(item *Item) error
	ExactMatch(item *Item, entryID string) error
	MatchIsBetter(item *Item, ref catalog.Ref) error
	MatchIsWorse(item *Item, entryID string) error
	Ignore(item *Item, reason string) error
	Ambiguous(item *Item, reason string) error

	ReportRedundantMatch(platform, title string, ref catalog.Ref) error
	ReportRedundantIncoming(platform, title string, identifiers []string) error
}

// Apply performs the single sink call matching d.
func (d Decision) Apply(sink Sink, item *Item) error {
	switch d.Disposition {
	case Add:
		return sink.Add(item)
	case ExactMatch:
		return sink.ExactMatch(item, d.Ref.EntryID)
	case MatchIsBetter:
		return sink.MatchIsBetter(item, d.Ref)
	case MatchIsWorse:
		return sink.MatchIsWorse(item, d.Ref.EntryID)
	case Ignore:
		return sink.Ignore(item, d.Reason)
	case Ambiguous:
		return sink.Ambiguous(item, d.Reason)
	default:
		return fmt.Errorf("unknown disposition %q", d.Disposition)
	}
}
