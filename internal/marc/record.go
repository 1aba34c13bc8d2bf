package marc

import (
	"strings"
)

const (
	leaderLength      = 24
	directoryEntryLen = 12
	fieldTerminator   = 0x1E
	recordTerminator  = 0x1D
	subfieldDelimiter = 0x1F
	defaultLeader     = "00000nam a2200000 a 4500"
)

// Subfield is one coded value inside a data field.
type Subfield struct {
	Code  byte
	Value string
}

// Field is a control field (tags 001-009) or a data field.
type Field struct {
	Tag        string
	Data       string
	Indicators [2]byte
	Subfields  []Subfield
}

// NewDataField builds a data field from alternating code/value pairs.
// A trailing code without a value is ignored.
func NewDataField(tag string, ind1, ind2 byte, pairs ...string) Field {
	field := Field{Tag: tag, Indicators: [2]byte{ind1, ind2}}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] == "" {
			continue
		}
		field.Subfields = append(field.Subfields, Subfield{Code: pairs[i][0], Value: pairs[i+1]})
	}
	return field
}

// NewControlField builds a control field.
func NewControlField(tag, data string) Field {
	return Field{Tag: tag, Data: data}
}

// IsControl reports whether the field carries raw data rather than subfields.
func (f Field) IsControl() bool {
	return isControlTag(f.Tag)
}

// Values returns the values of the named subfield codes in field order. With
// no codes every subfield value is returned.
func (f Field) Values(codes ...string) []string {
	var out []string
	for _, sf := range f.Subfields {
		if len(codes) == 0 || containsCode(codes, sf.Code) {
			out = append(out, sf.Value)
		}
	}
	return out
}

// Value joins every subfield value with single spaces, or returns Data for
// control fields.
func (f Field) Value() string {
	if f.IsControl() {
		return f.Data
	}
	return strings.Join(f.Values(), " ")
}

// Record is one bibliographic record.
type Record struct {
	Leader string
	Fields []Field
}

// NewRecord returns an empty record with a default leader.
func NewRecord() *Record {
	return &Record{Leader: defaultLeader}
}

// FieldsByTag returns the fields carrying tag, in record order.
func (r *Record) FieldsByTag(tag string) []Field {
	if r == nil {
		return nil
	}
	var out []Field
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// HasField reports whether at least one occurrence of tag is present.
func (r *Record) HasField(tag string) bool {
	if r == nil {
		return false
	}
	for _, f := range r.Fields {
		if f.Tag == tag {
			return true
		}
	}
	return false
}

// SubfieldValues returns every value of the named subfield codes across all
// occurrences of tag.
func (r *Record) SubfieldValues(tag string, codes ...string) []string {
	var out []string
	for _, f := range r.FieldsByTag(tag) {
		out = append(out, f.Values(codes...)...)
	}
	return out
}

// AddField appends a field to the record.
func (r *Record) AddField(f Field) {
	r.Fields = append(r.Fields, f)
}

// ControlNumber returns the 001 value, if any.
func (r *Record) ControlNumber() string {
	for _, f := range r.FieldsByTag("001") {
		return strings.TrimSpace(f.Data)
	}
	return ""
}

// Title returns 245 $a and $b joined, with trailing ISBD punctuation removed.
func (r *Record) Title() string {
	fields := r.FieldsByTag("245")
	if len(fields) == 0 {
		return ""
	}
	parts := fields[0].Values("a", "b")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	title := strings.TrimSpace(strings.Join(parts, " "))
	return strings.TrimRight(title, " /:;,.=")
}

func isControlTag(tag string) bool {
	return len(tag) == 3 && strings.HasPrefix(tag, "00")
}

func containsCode(codes []string, code byte) bool {
	for _, c := range codes {
		if len(c) > 0 && c[0] == code {
			return true
		}
	}
	return false
}
