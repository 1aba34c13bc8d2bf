// Package preflight provides readiness checks for the files and directories
// a match run depends on.
//
// These checks run in two contexts:
//   - `marcaroni match` calls RunAll before reading any input and refuses
//     to start when a check fails.
//   - `marcaroni snapshot status` uses the snapshot checks to report age
//     and row counts.
//
// Snapshot staleness fails the check only under the "fail" stale policy;
// under "warn" the result passes with Warning set.
package preflight
