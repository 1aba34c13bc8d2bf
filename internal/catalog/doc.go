// Package catalog builds the identifier index over an extracted snapshot of
// the existing catalog.
//
// The index maps a normalized identifier to every catalog entry reference
// (entry id plus source id) carrying it. It is built once per run, is
// read-only during matching, and refuses to build from an empty snapshot.
// Loading the snapshot from CSV and judging its freshness also live here.
package catalog
