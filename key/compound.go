package key

import (
	"github.com/pkg/errors"
)

// Compound is a key made of segments whose types are only known at run time.
type Compound []Segment

// Partial holds the leading segments recovered from a truncated key.
type Partial []any

// Encode concatenates the encoding of each value with its segment.
func (c Compound) Encode(values ...any) ([]byte, error) {
	if len(values) > len(c) {
		return nil, errors.Errorf("compound key: %d values for %d segments", len(values), len(c))
	}
	var dst []byte
	var err error
	for i, v := range values {
		if dst, err = c[i].AppendAny(dst, v); err != nil {
			return nil, &SegmentError{Position: i, Err: err}
		}
	}
	return dst, nil
}

// Decode decodes every segment in order and returns the unconsumed bytes.
func (c Compound) Decode(src []byte) ([]any, []byte, error) {
	out := make([]any, 0, len(c))
	rest := src
	for i, seg := range c {
		v, r, err := seg.DecodeAny(rest)
		if err != nil {
			return nil, src, &SegmentError{Position: i, Err: err}
		}
		out = append(out, v)
		rest = r
	}
	return out, rest, nil
}

// DecodePartial decodes segments while input remains. It stops cleanly at the
// first segment that finds the input empty.
func (c Compound) DecodePartial(src []byte) (Partial, []byte, error) {
	out := make(Partial, 0, len(c))
	rest := src
	for i, seg := range c {
		if len(rest) == 0 {
			break
		}
		v, r, err := seg.DecodeAny(rest)
		if err != nil {
			return nil, src, &SegmentError{Position: i, Err: err}
		}
		out = append(out, v)
		rest = r
	}
	return out, rest, nil
}
