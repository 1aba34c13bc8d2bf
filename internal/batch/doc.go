// Package batch drives one input file through matching.
//
// A Runner reads records from a MARC stream and, for each one, checks the
// required field, extracts identifiers, looks them up in the catalog index,
// and hands the resulting input to the disposition engine, which writes to
// the sink. Counters live on the sink's Stats.
//
// Errors that stem from how the run was set up (a missing required field
// under the abort policy, a snapshot referencing unknown sources) implement
// ErrorClassifier with kind "configuration" so the CLI can tell them apart
// from I/O failures.
package batch
