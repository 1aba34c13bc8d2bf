package match

import (
	"strings"

	"golang.org/x/text/cases"
)

// Exception is an injectable carve-out consulted by the first rule. Applies
// returns a reason and true when the record is already satisfied.
type Exception interface {
	Applies(in *Input) (string, bool)
}

// ExceptionFunc adapts a function to Exception.
type ExceptionFunc func(in *Input) (string, bool)

// Applies calls f.
func (f ExceptionFunc) Applies(in *Input) (string, bool) {
	return f(in)
}

// FieldContains holds when the input source is SourceID and any Tag$Code
// value contains Needle, ignoring case.
type FieldContains struct {
	SourceID string
	Tag      string
	Code     string
	Needle   string
	Reason   string
}

// Applies implements Exception.
func (f FieldContains) Applies(in *Input) (string, bool) {
	if in == nil || in.Item == nil || in.Item.Record == nil {
		return "", false
	}
	if in.Source.ID != f.SourceID || strings.TrimSpace(f.Needle) == "" {
		return "", false
	}
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(f.Needle))
	for _, value := range in.Item.Record.SubfieldValues(f.Tag, f.Code) {
		if strings.Contains(folder.String(value), needle) {
			reason := f.Reason
			if reason == "" {
				reason = f.Tag + "$" + f.Code + " contains " + strings.TrimSpace(f.Needle)
			}
			return reason, true
		}
	}
	return "", false
}
