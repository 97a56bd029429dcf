// Package key implements order-preserving byte encodings for typed key
// segments. Encoded keys compare with bytes.Compare in the same order as the
// values they were built from, so a sorted byte store can serve typed range
// scans.
package key

// Codec encodes one key segment. Decode consumes exactly the bytes the
// segment occupies and returns the rest.
type Codec[T any] interface {
	Append(dst []byte, v T) ([]byte, error)
	Decode(src []byte) (T, []byte, error)
}

// Encode returns the encoding of v as a fresh slice.
func Encode[T any](c Codec[T], v T) ([]byte, error) {
	return c.Append(nil, v)
}

// DecodePartial decodes one segment from a suffix that may end at a key
// boundary. Empty input yields ok == false and no error. Malformed non-empty
// input is a hard error.
func DecodePartial[T any](c Codec[T], src []byte) (v T, ok bool, rest []byte, err error) {
	if len(src) == 0 {
		return v, false, src, nil
	}
	v, rest, err = c.Decode(src)
	if err != nil {
		return v, false, src, err
	}
	return v, true, rest, nil
}

// Segment is a type-erased Codec used where key shapes are only known at
// run time.
type Segment interface {
	AppendAny(dst []byte, v any) ([]byte, error)
	DecodeAny(src []byte) (any, []byte, error)
}

// Erase wraps c as a Segment.
func Erase[T any](c Codec[T]) Segment {
	return erased[T]{c}
}

type erased[T any] struct {
	c Codec[T]
}

func (e erased[T]) AppendAny(dst []byte, v any) ([]byte, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return dst, &EncodeError{Value: v, Err: typeMismatch{want: zero, got: v}}
	}
	return e.c.Append(dst, t)
}

func (e erased[T]) DecodeAny(src []byte) (any, []byte, error) {
	v, rest, err := e.c.Decode(src)
	if err != nil {
		return nil, src, err
	}
	return v, rest, nil
}

type typeMismatch struct {
	want, got any
}

func (e typeMismatch) Error() string {
	return "segment type mismatch: want " + typeName(e.want) + ", got " + typeName(e.got)
}
