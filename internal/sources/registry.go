package sources

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mutronic/marcaroni/internal/license"
)

var (
	// ErrDuplicateSource reports a source id loaded more than once.
	ErrDuplicateSource = errors.New("duplicate source id")
	// ErrUnknownLicense reports a source whose license is not a known tier.
	ErrUnknownLicense = errors.New("unknown source license")
	// ErrUnknownSource reports a lookup for an id the registry does not hold.
	ErrUnknownSource = errors.New("unknown source id")
)

// Source is one vendor or platform profile.
type Source struct {
	ID       string
	Name     string
	Platform string
	License  license.Tier
}

// NewSource validates the license name and returns a Source.
func NewSource(id, name, platform, licenseName string) (Source, error) {
	tier, err := license.Parse(licenseName)
	if err != nil {
		return Source{}, fmt.Errorf("source %s: %w: %q", strings.TrimSpace(id), ErrUnknownLicense, licenseName)
	}
	return Source{
		ID:       strings.TrimSpace(id),
		Name:     strings.TrimSpace(name),
		Platform: strings.TrimSpace(platform),
		License:  tier,
	}, nil
}

// Registry maps source ids to sources and groups them by platform.
type Registry struct {
	byID       map[string]Source
	byPlatform map[string][]Source
	order      []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:       make(map[string]Source),
		byPlatform: make(map[string][]Source),
	}
}

// Add registers a source. Adding an id twice returns ErrDuplicateSource.
func (r *Registry) Add(src Source) error {
	if src.ID == "" {
		return errors.New("source id must not be empty")
	}
	if !src.License.Valid() {
		return fmt.Errorf("source %s: %w: %q", src.ID, ErrUnknownLicense, src.License)
	}
	if _, exists := r.byID[src.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, src.ID)
	}
	r.byID[src.ID] = src
	r.byPlatform[src.Platform] = append(r.byPlatform[src.Platform], src)
	r.order = append(r.order, src.ID)
	return nil
}

// Get returns the source registered under id.
func (r *Registry) Get(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	src, ok := r.byID[strings.TrimSpace(id)]
	return src, ok
}

// Lookup is Get with an ErrUnknownSource error instead of a flag.
func (r *Registry) Lookup(id string) (Source, error) {
	src, ok := r.Get(id)
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return src, nil
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byID)
}

// All returns every source in load order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ByPlatform returns the sources delivered through platform, in load order.
func (r *Registry) ByPlatform(platform string) []Source {
	if r == nil {
		return nil
	}
	group := r.byPlatform[platform]
	out := make([]Source, len(group))
	copy(out, group)
	return out
}

// Platforms returns the distinct platform names, sorted.
func (r *Registry) Platforms() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.byPlatform))
	for platform := range r.byPlatform {
		out = append(out, platform)
	}
	sort.Strings(out)
	return out
}

// Search returns sources whose name contains term, ignoring case. Results are
// ordered by name, then id.
func (r *Registry) Search(term string) []Source {
	if r == nil {
		return nil
	}
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(term))
	var out []Source
	for _, src := range r.byID {
		if strings.Contains(folder.String(src.Name), needle) {
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
