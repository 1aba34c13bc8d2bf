// Package marc reads and writes bibliographic records in the ISO 2709
// exchange format used by MARC 21 files.
//
// Only the parts the matcher needs are modelled: the leader, control fields,
// and data fields with indicators and subfields. Records are streamed one at
// a time with Reader and serialized with Writer or Record.Marshal.
package marc
