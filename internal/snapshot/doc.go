// Package snapshot persists the catalog snapshot and match-run history in
// SQLite.
//
// `marcaroni snapshot import` loads a bib-data CSV into the identifiers
// table, replacing the previous import, and stamps the import time used by
// the freshness check. Match runs can read the snapshot back from here
// instead of re-parsing the CSV, and every run records its counters in the
// runs table.
package snapshot
