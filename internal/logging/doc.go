// Package logging assembles the structured slog loggers used by marcaroni.
//
// It owns the console and JSON handlers, routes output to stdout and log
// files, and provides attribute helpers so every component tags its lines
// with the same keys (component, run_id, source_id, decision_*). A tee
// helper lets a match run mirror its log into the output directory next to
// the partition files, and a no-op logger keeps tests and wiring code quiet.
package logging
