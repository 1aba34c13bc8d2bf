package license

import (
	"errors"
	"fmt"
	"strings"
)

// Tier names a license category.
type Tier string

const (
	DDA          Tier = "dda"
	EBA          Tier = "eba"
	OA           Tier = "oa"
	Subscription Tier = "subscription"
	Purchased    Tier = "purchased"
)

// ErrUnknownTier reports a license name outside the known set.
var ErrUnknownTier = errors.New("unknown license tier")

var ranks = map[Tier]int{
	DDA:          0,
	EBA:          1,
	OA:           1,
	Subscription: 2,
	Purchased:    3,
}

var ordered = []Tier{DDA, EBA, OA, Subscription, Purchased}

// Parse converts a license name into a Tier. Matching ignores case and
// surrounding whitespace.
func Parse(value string) (Tier, error) {
	tier := Tier(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := ranks[tier]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, value)
	}
	return tier, nil
}

// Known returns every tier in ascending rank order.
func Known() []Tier {
	out := make([]Tier, len(ordered))
	copy(out, ordered)
	return out
}

// Rank returns the tier's ordinal, or -1 for an unknown tier.
func (t Tier) Rank() int {
	rank, ok := ranks[t]
	if !ok {
		return -1
	}
	return rank
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := ranks[t]
	return ok
}

// IsWeakest reports whether t shares the lowest rank of all known tiers.
func (t Tier) IsWeakest() bool {
	return t.Valid() && t.Rank() == weakestRank()
}

// BetterThan reports whether t strictly outranks other.
func (t Tier) BetterThan(other Tier) bool {
	return Better(t, other)
}

func (t Tier) String() string {
	return string(t)
}

// Better reports whether a strictly outranks b. Equal ranks are never better
// in either direction.
func Better(a, b Tier) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return a.Rank() > b.Rank()
}

func weakestRank() int {
	lowest := -1
	for _, rank := range ranks {
		if lowest < 0 || rank < lowest {
			lowest = rank
		}
	}
	return lowest
}
