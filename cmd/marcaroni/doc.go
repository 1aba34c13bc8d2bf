// Package main hosts the marcaroni CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into match runs
// over MARC files, source registry listings, snapshot maintenance and
// configuration scaffolding. It centralizes configuration resolution and
// logging setup so subcommands can focus on output.
//
// Keep this package lean: matching, loading and persistence live in the
// internal packages; commands here wire them together and render results.
package main
