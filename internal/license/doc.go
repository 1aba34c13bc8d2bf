// Package license defines the ordered license tiers attached to record
// sources.
//
// Tiers carry an integer rank; several tiers may share a rank. Comparison is
// strict, so tiers of equal rank are never better than one another.
package license
