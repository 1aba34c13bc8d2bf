package marc

import (
	"bytes"
	"fmt"
	"io"
)

// Writer serializes records to an ISO 2709 stream.
type Writer struct {
	w     io.Writer
	count int
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serializes rec.
func (wr *Writer) Write(rec *Record) error {
	raw, err := rec.Marshal()
	if err != nil {
		return err
	}
	if _, err := wr.w.Write(raw); err != nil {
		return fmt.Errorf("write marc record: %w", err)
	}
	wr.count++
	return nil
}

// Count returns the number of records written.
func (wr *Writer) Count() int {
	return wr.count
}

// Marshal encodes the record, recomputing the leader's length and base
// address.
func (r *Record) Marshal() ([]byte, error) {
	var directory, data bytes.Buffer
	for _, f := range r.Fields {
		if len(f.Tag) != 3 {
			return nil, fmt.Errorf("marshal: invalid tag %q", f.Tag)
		}
		start := data.Len()
		if f.IsControl() {
			data.WriteString(f.Data)
		} else {
			data.WriteByte(indicatorOrBlank(f.Indicators[0]))
			data.WriteByte(indicatorOrBlank(f.Indicators[1]))
			for _, sf := range f.Subfields {
				data.WriteByte(subfieldDelimiter)
				data.WriteByte(sf.Code)
				data.WriteString(sf.Value)
			}
		}
		data.WriteByte(fieldTerminator)
		length := data.Len() - start
		if length > 9999 || start > 99999 {
			return nil, fmt.Errorf("marshal: field %s exceeds ISO 2709 limits", f.Tag)
		}
		fmt.Fprintf(&directory, "%s%04d%05d", f.Tag, length, start)
	}
	directory.WriteByte(fieldTerminator)
	data.WriteByte(recordTerminator)

	base := leaderLength + directory.Len()
	total := base + data.Len()
	if total > 99999 {
		return nil, fmt.Errorf("marshal: record length %d exceeds ISO 2709 limit", total)
	}

	leader := []byte(r.Leader)
	if len(leader) != leaderLength {
		leader = []byte(defaultLeader)
	}
	copy(leader[0:5], fmt.Sprintf("%05d", total))
	copy(leader[12:17], fmt.Sprintf("%05d", base))

	out := make([]byte, 0, total)
	out = append(out, leader...)
	out = append(out, directory.Bytes()...)
	out = append(out, data.Bytes()...)
	return out, nil
}

func indicatorOrBlank(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}
