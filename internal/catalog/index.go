package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mutronic/marcaroni/internal/sources"
)

var (
	// ErrEmptySnapshot reports an attempt to build an index from no rows.
	ErrEmptySnapshot = errors.New("catalog snapshot contains no usable identifiers")
	// ErrUnknownSource reports snapshot rows naming a source id the registry
	// does not know.
	ErrUnknownSource = errors.New("catalog snapshot references unknown source")
)

// Ref identifies one existing catalog entry and the source it was loaded
// under.
type Ref struct {
	EntryID  string
	SourceID string
}

func (r Ref) String() string {
	return r.EntryID + "@" + r.SourceID
}

// Row is one snapshot line: an identifier and the entry carrying it.
type Row struct {
	Identifier string
	Ref        Ref
	Tag        string
	Subfield   string
}

// Index maps identifiers to catalog entry references.
type Index struct {
	entries map[string][]Ref
	rows    int
}

// Build constructs an Index. Rows with an empty identifier are skipped; a
// result with no identifiers returns ErrEmptySnapshot.
func Build(rows []Row) (*Index, error) {
	idx := &Index{entries: make(map[string][]Ref)}
	for _, row := range rows {
		if row.Identifier == "" {
			continue
		}
		idx.rows++
		refs := idx.entries[row.Identifier]
		if containsRef(refs, row.Ref) {
			continue
		}
		idx.entries[row.Identifier] = append(refs, row.Ref)
	}
	if len(idx.entries) == 0 {
		return nil, ErrEmptySnapshot
	}
	return idx, nil
}

// Lookup returns the union of references keyed by any of identifiers,
// deduplicated and sorted by entry id then source id. It never mutates the
// index.
func (idx *Index) Lookup(identifiers []string) []Ref {
	if idx == nil || len(identifiers) == 0 {
		return nil
	}
	seen := make(map[Ref]struct{})
	var out []Ref
	for _, id := range identifiers {
		for _, ref := range idx.entries[id] {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	SortRefs(out)
	return out
}

// Contains reports whether identifier is indexed.
func (idx *Index) Contains(identifier string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.entries[identifier]
	return ok
}

// Len returns the number of distinct identifiers.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Rows returns the number of rows accepted at build time.
func (idx *Index) Rows() int {
	if idx == nil {
		return 0
	}
	return idx.rows
}

// SourceIDs returns the distinct source ids referenced by the index, sorted.
func (idx *Index) SourceIDs() []string {
	if idx == nil {
		return nil
	}
	set := make(map[string]struct{})
	for _, refs := range idx.entries {
		for _, ref := range refs {
			set[ref.SourceID] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ValidateSources checks every referenced source id against reg.
func (idx *Index) ValidateSources(reg *sources.Registry) error {
	var missing []string
	for _, id := range idx.SourceIDs() {
		if !reg.Contains(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownSource, missing)
	}
	return nil
}

// SortRefs orders refs by entry id, then source id.
func SortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].EntryID != refs[j].EntryID {
			return refs[i].EntryID < refs[j].EntryID
		}
		return refs[i].SourceID < refs[j].SourceID
	})
}

func containsRef(refs []Ref, ref Ref) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
