package marc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed reports bytes that do not form a valid ISO 2709 record.
var ErrMalformed = errors.New("malformed marc record")

// DecodeError reports a record whose bytes were read in full but could not
// be decoded. The reader stays positioned at the next record.
type DecodeError struct {
	Record int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Reader streams records from an ISO 2709 byte stream.
type Reader struct {
	r     *bufio.Reader
	count int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Count returns the number of records read so far, including ones that
// failed to decode.
func (rd *Reader) Count() int {
	return rd.count
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (rd *Reader) Next() (*Record, error) {
	for {
		b, err := rd.r.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		// Tolerate line breaks some vendors insert between records.
		if b[0] == '\n' || b[0] == '\r' {
			_, _ = rd.r.ReadByte()
			continue
		}
		break
	}

	head := make([]byte, 5)
	if _, err := io.ReadFull(rd.r, head); err != nil {
		return nil, fmt.Errorf("%w: record %d: short length prefix", ErrMalformed, rd.count+1)
	}
	length, ok := parseDigits(head)
	if !ok || length < leaderLength+1 {
		return nil, fmt.Errorf("%w: record %d: invalid length %q", ErrMalformed, rd.count+1, head)
	}
	raw := make([]byte, length)
	copy(raw, head)
	if _, err := io.ReadFull(rd.r, raw[5:]); err != nil {
		return nil, fmt.Errorf("%w: record %d: truncated: %v", ErrMalformed, rd.count+1, err)
	}
	rd.count++
	rec, err := Unmarshal(raw)
	if err != nil {
		return nil, &DecodeError{Record: rd.count, Err: err}
	}
	return rec, nil
}

// ReadAll reads every record from r.
func ReadAll(r io.Reader) ([]*Record, error) {
	rd := NewReader(r)
	var out []*Record
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Unmarshal decodes a single ISO 2709 record.
func Unmarshal(raw []byte) (*Record, error) {
	if len(raw) < leaderLength+1 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than a leader", ErrMalformed, len(raw))
	}
	leader := string(raw[:leaderLength])
	base, ok := parseDigits(raw[12:17])
	if !ok || base <= leaderLength || base > len(raw) {
		return nil, fmt.Errorf("%w: invalid base address %q", ErrMalformed, leader[12:17])
	}

	rec := &Record{Leader: leader}
	directory := raw[leaderLength : base-1]
	if len(directory)%directoryEntryLen != 0 {
		return nil, fmt.Errorf("%w: directory length %d", ErrMalformed, len(directory))
	}
	data := raw[base:]
	for off := 0; off < len(directory); off += directoryEntryLen {
		entry := directory[off : off+directoryEntryLen]
		tag := string(entry[:3])
		flen, ok1 := parseDigits(entry[3:7])
		start, ok2 := parseDigits(entry[7:12])
		if !ok1 || !ok2 || flen < 1 || start+flen > len(data) {
			return nil, fmt.Errorf("%w: bad directory entry for %s", ErrMalformed, tag)
		}
		body := data[start : start+flen-1]
		rec.Fields = append(rec.Fields, decodeField(tag, body))
	}
	return rec, nil
}

// parseDigits reads an unsigned decimal number. Signs, spaces and an empty
// slice are rejected.
func parseDigits(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func decodeField(tag string, body []byte) Field {
	if isControlTag(tag) {
		return Field{Tag: tag, Data: string(body)}
	}
	field := Field{Tag: tag, Indicators: [2]byte{' ', ' '}}
	if len(body) >= 2 {
		field.Indicators = [2]byte{body[0], body[1]}
		body = body[2:]
	}
	start := -1
	for i := 0; i <= len(body); i++ {
		if i < len(body) && body[i] != subfieldDelimiter {
			continue
		}
		if start >= 0 && start < i {
			chunk := body[start:i]
			field.Subfields = append(field.Subfields, Subfield{Code: chunk[0], Value: string(chunk[1:])})
		}
		start = i + 1
	}
	return field
}
