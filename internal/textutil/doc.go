// Package textutil turns operator-supplied names into safe filesystem
// tokens: output directory names derived from input files and partition
// prefixes derived from source names.
package textutil
