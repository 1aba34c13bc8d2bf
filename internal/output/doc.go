// Package output writes match results to disk.
//
// A FileSink implements match.Sink: every disposition appends the record to
// its own MARC partition file inside a per-batch directory, and the
// ambiguous, superseded and redundant-record reports are written as CSV
// alongside. Files are created on first use, so a partition that receives
// no records never appears. Stats accumulates per-disposition counts and the
// matches-by-source histogram for the final report.
package output
