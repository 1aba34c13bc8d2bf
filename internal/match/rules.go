package match

import (
	"fmt"
	"strings"
)

// Rule is one entry of the decision list. Decide returns false to decline
// the record.
type Rule interface {
	Name() string
	Decide(in *Input) (Decision, bool)
}

// TiePolicy controls the single same-platform candidate from another source
// whose license rank equals the input's.
type TiePolicy int

const (
	// TieUpdate treats a tie like a worse match: the record updates it.
	TieUpdate TiePolicy = iota
	// TieAmbiguous routes ties to manual review.
	TieAmbiguous
)

// ParseTiePolicy maps configuration names to a TiePolicy.
func ParseTiePolicy(value string) (TiePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "update":
		return TieUpdate, nil
	case "ambiguous":
		return TieAmbiguous, nil
	default:
		return TieUpdate, fmt.Errorf("unknown tie policy %q", value)
	}
}

const (
	ReasonNoRule         = "no rule matched"
	ReasonWeakestTier    = "weakest tier: record's tier and all matches are the weakest tier; needs manual resolution"
	reasonSupersededBy   = "superseded by better license"
	reasonMultiplePrefix = "multiple matches on platform"
	reasonAlreadySatisfy = "already satisfied"
	reasonTiePrefix      = "license tie with match"
)

// exceptionRule forces the already-satisfied disposition when any configured
// exception holds.
type exceptionRule struct {
	exceptions []Exception
}

func (exceptionRule) Name() string { return "exception" }

func (r exceptionRule) Decide(in *Input) (Decision, bool) {
	for _, ex := range r.exceptions {
		if reason, ok := ex.Applies(in); ok {
			msg := reasonAlreadySatisfy
			if reason != "" {
				msg += ": " + reason
			}
			return Decision{Disposition: Ignore, Reason: msg}, true
		}
	}
	return Decision{}, false
}

// supersededRule ignores weakest-tier records when a better copy exists.
type supersededRule struct{}

func (supersededRule) Name() string { return "weakest_superseded" }

func (supersededRule) Decide(in *Input) (Decision, bool) {
	if !in.InputIsWeakest() || !in.AnyBetter() {
		return Decision{}, false
	}
	return Decision{
		Disposition: Ignore,
		Reason:      reasonSupersededBy + ": " + describe(in.Better()),
	}, true
}

// weakestExactRule matches a weakest-tier record to its single weakest-tier
// twin on the same platform.
type weakestExactRule struct{}

func (weakestExactRule) Name() string { return "weakest_exact" }

func (weakestExactRule) Decide(in *Input) (Decision, bool) {
	if !in.InputIsWeakest() || len(in.Candidates) != 1 {
		return Decision{}, false
	}
	only := in.Candidates[0]
	if !only.Vector.MatchIsSamePlatform || !only.Vector.MatchIsWeakestTier {
		return Decision{}, false
	}
	return Decision{Disposition: ExactMatch, Ref: only.Ref}, true
}

// weakestAmbiguousRule sends remaining weakest-tier records to review.
type weakestAmbiguousRule struct{}

func (weakestAmbiguousRule) Name() string { return "weakest_ambiguous" }

func (weakestAmbiguousRule) Decide(in *Input) (Decision, bool) {
	if !in.InputIsWeakest() || in.AnyBetter() {
		return Decision{}, false
	}
	return Decision{Disposition: Ambiguous, Reason: ReasonWeakestTier}, true
}

// otherPlatformRule adds records whose matches all live on other platforms.
type otherPlatformRule struct{}

func (otherPlatformRule) Name() string { return "other_platform_only" }

func (otherPlatformRule) Decide(in *Input) (Decision, bool) {
	if len(in.SamePlatform()) > 0 {
		return Decision{}, false
	}
	return Decision{Disposition: Add, Reason: "no matches on platform " + in.Source.Platform}, true
}

// samePlatformRule resolves records against their same-platform matches.
type samePlatformRule struct {
	ties TiePolicy
}

func (samePlatformRule) Name() string { return "same_platform" }

func (r samePlatformRule) Decide(in *Input) (Decision, bool) {
	same := in.SamePlatform()
	switch {
	case len(same) == 0:
		return Decision{}, false
	case len(same) > 1:
		return Decision{
			Disposition: Ambiguous,
			Reason:      fmt.Sprintf("%s %s: %s", reasonMultiplePrefix, in.Source.Platform, describe(same)),
		}, true
	}

	only := same[0]
	switch {
	case only.Source.ID == in.Source.ID:
		return Decision{Disposition: ExactMatch, Ref: only.Ref}, true
	case only.Vector.MatchHasBetterLicense:
		return Decision{Disposition: MatchIsBetter, Ref: only.Ref}, true
	case r.ties == TieAmbiguous && only.Source.License.Rank() == in.Source.License.Rank():
		return Decision{
			Disposition: Ambiguous,
			Ref:         only.Ref,
			Reason:      fmt.Sprintf("%s %s; needs manual resolution", reasonTiePrefix, describeOne(only)),
		}, true
	default:
		return Decision{Disposition: MatchIsWorse, Ref: only.Ref}, true
	}
}

// DefaultRules returns the decision list in precedence order.
func DefaultRules(exceptions []Exception, ties TiePolicy) []Rule {
	return []Rule{
		exceptionRule{exceptions: exceptions},
		supersededRule{},
		weakestExactRule{},
		weakestAmbiguousRule{},
		otherPlatformRule{},
		samePlatformRule{ties: ties},
	}
}

func describe(candidates []Candidate) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = describeOne(c)
	}
	return strings.Join(parts, ", ")
}

func describeOne(c Candidate) string {
	return fmt.Sprintf("%s (source %s, %s)", c.Ref.EntryID, c.Ref.SourceID, c.Source.License)
}
