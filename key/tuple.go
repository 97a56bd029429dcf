package key

// Opt is a trailing segment that may be absent.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Opt.
func Some[T any](v T) Opt[T] { return Opt[T]{Value: v, Valid: true} }

// None returns an absent Opt.
func None[T any]() Opt[T] { return Opt[T]{} }

// Optional wraps c so that empty input decodes to an absent value. An absent
// value encodes to zero bytes; it is only meaningful as the last segment.
func Optional[T any](c Codec[T]) Codec[Opt[T]] {
	return optionalCodec[T]{c}
}

type optionalCodec[T any] struct {
	inner Codec[T]
}

func (c optionalCodec[T]) Append(dst []byte, v Opt[T]) ([]byte, error) {
	if !v.Valid {
		return dst, nil
	}
	return c.inner.Append(dst, v.Value)
}

func (c optionalCodec[T]) Decode(src []byte) (Opt[T], []byte, error) {
	v, ok, rest, err := DecodePartial(c.inner, src)
	if err != nil {
		return Opt[T]{}, src, err
	}
	return Opt[T]{Value: v, Valid: ok}, rest, nil
}

// T2 is a pair of key segments.
type T2[A, B any] struct {
	A A
	B B
}

// T3 is a triple of key segments.
type T3[A, B, C any] struct {
	A A
	B B
	C C
}

// Tuple2 concatenates two segments. Pairs sort by A, then by B.
func Tuple2[A, B any](a Codec[A], b Codec[B]) Codec[T2[A, B]] {
	return tuple2[A, B]{a, b}
}

// Tuple3 concatenates three segments.
func Tuple3[A, B, C any](a Codec[A], b Codec[B], c Codec[C]) Codec[T3[A, B, C]] {
	return tuple3[A, B, C]{a, b, c}
}

type tuple2[A, B any] struct {
	a Codec[A]
	b Codec[B]
}

func (t tuple2[A, B]) Append(dst []byte, v T2[A, B]) ([]byte, error) {
	dst, err := t.a.Append(dst, v.A)
	if err != nil {
		return dst, err
	}
	return t.b.Append(dst, v.B)
}

func (t tuple2[A, B]) Decode(src []byte) (T2[A, B], []byte, error) {
	var v T2[A, B]
	var err error
	rest := src
	if v.A, rest, err = t.a.Decode(rest); err != nil {
		return v, src, &SegmentError{Position: 0, Err: err}
	}
	if v.B, rest, err = t.b.Decode(rest); err != nil {
		return v, src, &SegmentError{Position: 1, Err: err}
	}
	return v, rest, nil
}

type tuple3[A, B, C any] struct {
	a Codec[A]
	b Codec[B]
	c Codec[C]
}

func (t tuple3[A, B, C]) Append(dst []byte, v T3[A, B, C]) ([]byte, error) {
	dst, err := t.a.Append(dst, v.A)
	if err != nil {
		return dst, err
	}
	if dst, err = t.b.Append(dst, v.B); err != nil {
		return dst, err
	}
	return t.c.Append(dst, v.C)
}

func (t tuple3[A, B, C]) Decode(src []byte) (T3[A, B, C], []byte, error) {
	var v T3[A, B, C]
	var err error
	rest := src
	if v.A, rest, err = t.a.Decode(rest); err != nil {
		return v, src, &SegmentError{Position: 0, Err: err}
	}
	if v.B, rest, err = t.b.Decode(rest); err != nil {
		return v, src, &SegmentError{Position: 1, Err: err}
	}
	if v.C, rest, err = t.c.Decode(rest); err != nil {
		return v, src, &SegmentError{Position: 2, Err: err}
	}
	return v, rest, nil
}
