package key

import (
	"fmt"
)

// Reason classifies a key decode failure.
type Reason uint8

const (
	// NotEnoughBytes means a header or payload ran past the end of the input.
	NotEnoughBytes Reason = iota + 1
	// InvalidLength means a length code does not fit in 64 bits.
	InvalidLength
	// InvalidText means a string segment is not valid UTF-8.
	InvalidText
	// IncompleteKey means a stored key stops before reaching a leaf.
	IncompleteKey
	// TrailingBytes means a stored key continues past its leaf.
	TrailingBytes
)

func (r Reason) String() string {
	switch r {
	case NotEnoughBytes:
		return "not enough bytes"
	case InvalidLength:
		return "invalid length"
	case InvalidText:
		return "invalid utf-8"
	case IncompleteKey:
		return "incomplete key"
	case TrailingBytes:
		return "trailing bytes"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// DecodeError describes a malformed key segment.
type DecodeError struct {
	Reason Reason
	// Expected and Available are set for NotEnoughBytes.
	Expected  uint64
	Available uint64
}

func (e *DecodeError) Error() string {
	if e.Reason == NotEnoughBytes {
		return fmt.Sprintf("key decode: not enough bytes: expected %d, available %d", e.Expected, e.Available)
	}
	return "key decode: " + e.Reason.String()
}

// Is matches any DecodeError with the same Reason, so the package sentinels
// work with errors.Is.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Reason == e.Reason
}

var (
	ErrNotEnoughBytes = &DecodeError{Reason: NotEnoughBytes}
	ErrInvalidLength  = &DecodeError{Reason: InvalidLength}
	ErrInvalidText    = &DecodeError{Reason: InvalidText}
	ErrIncompleteKey  = &DecodeError{Reason: IncompleteKey}
	ErrTrailingBytes  = &DecodeError{Reason: TrailingBytes}
)

func notEnough(expected, available int) error {
	return &DecodeError{Reason: NotEnoughBytes, Expected: uint64(expected), Available: uint64(available)}
}

// SegmentError tags a failure with the position of the segment that caused it.
type SegmentError struct {
	Position int
	Err      error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Position, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// EncodeError is returned by codecs that cannot represent a value.
type EncodeError struct {
	Value any
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("key encode %v: %v", e.Value, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
