// Package config loads, normalizes, and validates marcaroni configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// reads TOML files, and honours environment fallbacks such as
// MARCARONI_OUTPUT_DIR. The Config type gathers every knob the matcher needs:
// where the source registry and catalog snapshot live, which field carries
// identifiers, how ties and missing fields are treated, and which publisher
// carve-outs apply.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical policy names, and clear validation errors.
package config
