// Package codec converts container values to and from the raw bytes stored
// by a backend.
//
// A codec is fixed when a container is constructed. Changing the codec of an
// existing container makes previously written values undecodable.
package codec

import (
	"github.com/pkg/errors"

	"github.com/AmitPr/libkv/key"
)

// Codec encodes and decodes stored values.
// Implementations must be safe for concurrent use.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(b []byte) (T, error)
}

// ErrTrailingBytes is returned by Key codecs when a value has bytes left
// over after decoding.
var ErrTrailingBytes = errors.New("codec: trailing bytes after value")

var (
	// String stores the UTF-8 bytes of a string verbatim.
	String Codec[string] = stringCodec{}
	// Bytes stores a byte slice verbatim.
	Bytes Codec[[]byte] = bytesCodec{}
)

type stringCodec struct{}

func (stringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }
func (stringCodec) Decode(b []byte) (string, error) { return string(b), nil }

type bytesCodec struct{}

func (bytesCodec) Encode(v []byte) ([]byte, error) { return append([]byte{}, v...), nil }
func (bytesCodec) Decode(b []byte) ([]byte, error) { return append([]byte{}, b...), nil }

// Key stores values with an order-preserving key encoding. Vector lengths are
// stored this way.
func Key[T any](c key.Codec[T]) Codec[T] {
	return keyCodec[T]{c}
}

type keyCodec[T any] struct {
	c key.Codec[T]
}

func (k keyCodec[T]) Encode(v T) ([]byte, error) {
	return k.c.Append(nil, v)
}

func (k keyCodec[T]) Decode(b []byte) (T, error) {
	v, rest, err := k.c.Decode(b)
	if err != nil {
		return v, err
	}
	if len(rest) != 0 {
		var zero T
		return zero, errors.Wrapf(ErrTrailingBytes, "%d bytes", len(rest))
	}
	return v, nil
}
