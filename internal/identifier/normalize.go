package identifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Kind selects the cleaning rules for an identifier field.
type Kind int

const (
	KindISBN Kind = iota
	KindControlNumber
)

func (k Kind) String() string {
	switch k {
	case KindISBN:
		return "isbn"
	case KindControlNumber:
		return "control_number"
	default:
		return "unknown"
	}
}

const minValidLength = 8

// KindForTag maps a field tag to its identifier kind. Only 020 carries ISBNs.
func KindForTag(tag string) Kind {
	if strings.TrimSpace(tag) == "020" {
		return KindISBN
	}
	return KindControlNumber
}

// NormalizeISBN cleans a raw ISBN subfield value: qualifiers and trailing
// hyphens are dropped and a check digit x becomes X. The boolean is false when
// the cleaned value is not 10 or 13 characters long; the value is still
// returned.
func NormalizeISBN(raw string) (string, bool) {
	value := norm.NFC.String(strings.TrimSpace(raw))
	if idx := strings.IndexByte(value, '('); idx >= 0 {
		value = value[:idx]
	}
	if idx := strings.IndexByte(value, '\\'); idx >= 0 {
		value = value[:idx]
	}
	value = strings.TrimSpace(value)
	if idx := strings.IndexFunc(value, unicode.IsSpace); idx >= 0 {
		value = value[:idx]
	}
	value = strings.ToUpper(strings.TrimRight(value, "-"))
	n := utf8.RuneCountInString(value)
	return value, n == 10 || n == 13
}

// NormalizeControlNumber strips parentheses, lower-cases and trims.
func NormalizeControlNumber(raw string) string {
	value := norm.NFC.String(raw)
	value = strings.NewReplacer("(", "", ")", "").Replace(value)
	return strings.TrimSpace(strings.ToLower(value))
}

// Normalize applies the cleaning rules for kind.
func Normalize(kind Kind, raw string) string {
	if kind == KindISBN {
		value, _ := NormalizeISBN(raw)
		return value
	}
	return NormalizeControlNumber(raw)
}

// Valid reports whether a cleaned value passes the validity floor: at least
// one digit and longer than seven characters.
func Valid(value string) bool {
	if utf8.RuneCountInString(value) < minValidLength {
		return false
	}
	return strings.IndexFunc(value, unicode.IsDigit) >= 0
}
