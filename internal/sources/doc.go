// Package sources holds the registry of record sources: the vendor or
// platform profiles under which incoming batches and existing catalog
// entries were loaded.
//
// A Registry is built once at startup from a CSV file with the header
// `id,name,platform,license` and is read-only afterwards. Duplicate ids and
// unknown license names are configuration errors.
package sources
