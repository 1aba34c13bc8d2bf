package identifier

import (
	"sort"
	"strings"
)

// DefaultTag and DefaultSubfields describe the ISBN field used when nothing
// else is configured.
const DefaultTag = "020"

var DefaultSubfields = []string{"a", "z"}

// Record is the view of a bibliographic record the extractor needs.
type Record interface {
	SubfieldValues(tag string, codes ...string) []string
}

// Field designates where identifiers live on a record.
type Field struct {
	Tag       string
	Subfields []string
	Kind      Kind
}

// NewField builds a Field whose kind is derived from tag. Empty subfields
// fall back to DefaultSubfields.
func NewField(tag string, subfields ...string) Field {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = DefaultTag
	}
	if len(subfields) == 0 {
		subfields = DefaultSubfields
	}
	codes := make([]string, len(subfields))
	copy(codes, subfields)
	return Field{Tag: tag, Subfields: codes, Kind: KindForTag(tag)}
}

// Result is the outcome of extracting identifiers from one record.
type Result struct {
	// Identifiers holds the distinct valid identifiers, sorted.
	Identifiers []string
	// Malformed holds ISBNs of unexpected length that were still kept.
	Malformed []string
	// Raw counts subfield occurrences inspected.
	Raw int
}

// FoundAny reports whether at least one identifier passed the validity floor.
func (r Result) FoundAny() bool {
	return len(r.Identifiers) > 0
}

// Extract reads field from rec and returns its normalized identifiers.
func Extract(rec Record, field Field) Result {
	var res Result
	if rec == nil {
		return res
	}
	seen := make(map[string]struct{})
	for _, raw := range rec.SubfieldValues(field.Tag, field.Subfields...) {
		res.Raw++
		var value string
		lengthOK := true
		if field.Kind == KindISBN {
			value, lengthOK = NormalizeISBN(raw)
		} else {
			value = NormalizeControlNumber(raw)
		}
		if !Valid(value) {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		res.Identifiers = append(res.Identifiers, value)
		if !lengthOK {
			res.Malformed = append(res.Malformed, value)
		}
	}
	sort.Strings(res.Identifiers)
	return res
}

// Plan chooses the identifier field for each input source.
type Plan struct {
	Default   Field
	Overrides map[string]Field
}

// NewPlan returns a plan that uses def unless a source id has an override.
func NewPlan(def Field) Plan {
	return Plan{Default: def, Overrides: map[string]Field{}}
}

// Override sets the field used for sourceID.
func (p *Plan) Override(sourceID string, field Field) {
	if p.Overrides == nil {
		p.Overrides = map[string]Field{}
	}
	p.Overrides[strings.TrimSpace(sourceID)] = field
}

// For returns the field for sourceID.
func (p Plan) For(sourceID string) Field {
	if field, ok := p.Overrides[strings.TrimSpace(sourceID)]; ok {
		return field
	}
	if p.Default.Tag == "" {
		return NewField(DefaultTag)
	}
	return p.Default
}
