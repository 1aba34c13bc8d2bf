// Package match decides what happens to each incoming record.
//
// For every candidate catalog entry sharing an identifier with the record, a
// Vector of three facts is computed relative to the record's source. An
// Engine then walks an ordered list of rules; the first rule that claims the
// record yields the Decision, and the Decision is applied to a Sink with
// exactly one call. Records with no candidates are added without consulting
// the rules, and a record no rule claims is reported as ambiguous.
//
// Two report-only side channels run before the rules: existing weakest-tier
// entries on other platforms made redundant by a better incoming record, and
// weakest-tier incoming records made redundant by better existing entries.
package match
