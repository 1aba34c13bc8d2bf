// Package identifier extracts and normalizes the matching keys carried by a
// record's designated identifier field.
//
// ISBN-bearing fields (020) and control-number fields (035 and friends) are
// cleaned differently; both share a validity floor of at least one digit and
// more than seven characters. ISBNs of unexpected length are kept but
// reported as malformed so operators can inspect them.
package identifier
