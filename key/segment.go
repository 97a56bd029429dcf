package key

import (
	"fmt"
	"unicode/utf8"
)

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Fixed width integer segments. Unsigned values are big-endian; signed values
// have the sign bit flipped first so negative numbers sort before positive ones.
var (
	Uint8  Codec[uint8]  = unsignedCodec[uint8]{width: 1}
	Uint16 Codec[uint16] = unsignedCodec[uint16]{width: 2}
	Uint32 Codec[uint32] = unsignedCodec[uint32]{width: 4}
	Uint64 Codec[uint64] = unsignedCodec[uint64]{width: 8}

	Int8  Codec[int8]  = signedCodec[int8]{width: 1}
	Int16 Codec[int16] = signedCodec[int16]{width: 2}
	Int32 Codec[int32] = signedCodec[int32]{width: 4}
	Int64 Codec[int64] = signedCodec[int64]{width: 8}

	// Index is the segment used for vector positions and lengths.
	Index = Uint64
)

// Variable length segments, prefixed by their compact length code.
var (
	String Codec[string]   = stringCodec{}
	Bytes  Codec[[]byte]   = bytesCodec{}
	Unit   Codec[struct{}] = unitCodec{}
)

func putBE(dst []byte, x uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(x>>(8*i)))
	}
	return dst
}

func getBE(src []byte, width int) uint64 {
	var x uint64
	for _, b := range src[:width] {
		x = x<<8 | uint64(b)
	}
	return x
}

type unsignedCodec[T unsigned] struct {
	width int
}

func (c unsignedCodec[T]) Append(dst []byte, v T) ([]byte, error) {
	return putBE(dst, uint64(v), c.width), nil
}

func (c unsignedCodec[T]) Decode(src []byte) (T, []byte, error) {
	if len(src) < c.width {
		return 0, src, notEnough(c.width, len(src))
	}
	return T(getBE(src, c.width)), src[c.width:], nil
}

type signedCodec[T signed] struct {
	width int
}

func (c signedCodec[T]) signBit() uint64 {
	return 1 << (8*c.width - 1)
}

func (c signedCodec[T]) mask() uint64 {
	if c.width == 8 {
		return ^uint64(0)
	}
	return 1<<(8*c.width) - 1
}

func (c signedCodec[T]) Append(dst []byte, v T) ([]byte, error) {
	x := (uint64(int64(v)) & c.mask()) ^ c.signBit()
	return putBE(dst, x, c.width), nil
}

func (c signedCodec[T]) Decode(src []byte) (T, []byte, error) {
	if len(src) < c.width {
		return 0, src, notEnough(c.width, len(src))
	}
	x := getBE(src, c.width) ^ c.signBit()
	shift := 64 - 8*c.width
	return T(int64(x<<shift) >> shift), src[c.width:], nil
}

type stringCodec struct{}

func (stringCodec) Append(dst []byte, v string) ([]byte, error) {
	dst = AppendLength(dst, uint64(len(v)))
	return append(dst, v...), nil
}

func (stringCodec) Decode(src []byte) (string, []byte, error) {
	payload, rest, err := decodeVar(src)
	if err != nil {
		return "", src, err
	}
	if !utf8.Valid(payload) {
		return "", src, ErrInvalidText
	}
	return string(payload), rest, nil
}

type bytesCodec struct{}

func (bytesCodec) Append(dst []byte, v []byte) ([]byte, error) {
	dst = AppendLength(dst, uint64(len(v)))
	return append(dst, v...), nil
}

func (bytesCodec) Decode(src []byte) ([]byte, []byte, error) {
	payload, rest, err := decodeVar(src)
	if err != nil {
		return nil, src, err
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, rest, nil
}

func decodeVar(src []byte) (payload, rest []byte, err error) {
	n, body, err := DecodeLength(src)
	if err != nil {
		return nil, src, err
	}
	if n > uint64(len(body)) {
		return nil, src, &DecodeError{Reason: NotEnoughBytes, Expected: n, Available: uint64(len(body))}
	}
	return body[:n], body[n:], nil
}

type unitCodec struct{}

func (unitCodec) Append(dst []byte, _ struct{}) ([]byte, error) { return dst, nil }

func (unitCodec) Decode(src []byte) (struct{}, []byte, error) { return struct{}{}, src, nil }

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
