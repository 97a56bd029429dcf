package codec

import (
	"google.golang.org/protobuf/proto"
)

// Proto stores protobuf messages in wire format. newMsg returns an empty
// message to decode into.
func Proto[T proto.Message](newMsg func() T) Codec[T] {
	return protoCodec[T]{newMsg: newMsg}
}

type protoCodec[T proto.Message] struct {
	newMsg func() T
}

func (protoCodec[T]) Encode(v T) ([]byte, error) { return proto.Marshal(v) }

func (p protoCodec[T]) Decode(b []byte) (T, error) {
	m := p.newMsg()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero T
		return zero, err
	}
	return m, nil
}
