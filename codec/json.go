package codec

import (
	gojson "github.com/goccy/go-json"
)

// JSON is a codec backed by github.com/goccy/go-json.
func JSON[T any]() Codec[T] { return jsonCodec[T]{} }

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Encode(v T) ([]byte, error) { return gojson.Marshal(v) }

func (jsonCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := gojson.Unmarshal(b, &v)
	return v, err
}
