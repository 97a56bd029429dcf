package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/AmitPr/libkv/key"
)

func TestStringAndBytes(t *testing.T) {
	b, err := String.Encode("héllo")
	require.NoError(t, err)
	require.Equal(t, []byte("héllo"), b)
	s, err := String.Decode(b)
	require.NoError(t, err)
	require.Equal(t, "héllo", s)

	src := []byte{1, 2, 3}
	out, err := Bytes.Decode(src)
	require.NoError(t, err)
	src[0] = 9
	require.Equal(t, []byte{1, 2, 3}, out)
}

func TestKey(t *testing.T) {
	c := Key(key.Index)
	b, err := c.Encode(7)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 7}, b)

	n, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, uint64(7), n)

	_, err = c.Decode(append(b, 0))
	require.ErrorIs(t, err, ErrTrailingBytes)

	_, err = c.Decode(b[:3])
	require.ErrorIs(t, err, key.ErrNotEnoughBytes)
}

type record struct {
	Name  string   `json:"name"`
	Score int      `json:"score"`
	Tags  []string `json:"tags,omitempty"`
}

func TestJSON(t *testing.T) {
	c := JSON[record]()
	in := record{Name: "ada", Score: 3, Tags: []string{"x"}}
	b, err := c.Encode(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"ada","score":3,"tags":["x"]}`, string(b))

	out, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, in, out)

	_, err = c.Decode([]byte("{"))
	require.Error(t, err)
}

func TestProto(t *testing.T) {
	c := Proto(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("first"))
	require.NoError(t, err)

	m, err := c.Decode(b)
	require.NoError(t, err)
	require.True(t, proto.Equal(wrapperspb.String("first"), m))

	_, err = c.Decode([]byte{0xff, 0xff})
	require.Error(t, err)
}

func TestCompressed(t *testing.T) {
	large := bytes.Repeat([]byte("abcdefgh"), 512)
	for _, algo := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(algo.String(), func(t *testing.T) {
			c := Compressed(Bytes, algo)

			b, err := c.Encode(large)
			require.NoError(t, err)
			if algo != CompressionNone {
				require.Less(t, len(b), len(large))
			}
			out, err := c.Decode(b)
			require.NoError(t, err)
			require.Equal(t, large, out)

			// Incompressible input is stored as is.
			small := []byte("xy")
			b, err = c.Encode(small)
			require.NoError(t, err)
			require.Len(t, b, blockHeaderSize+len(small))
			out, err = c.Decode(b)
			require.NoError(t, err)
			require.Equal(t, small, out)

			_, err = c.Decode([]byte{1, 2})
			require.ErrorIs(t, err, errBlockTooSmall)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{"": CompressionNone, "lz4": CompressionLZ4, "zstd": CompressionZSTD} {
		got, err := ParseCompression(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseCompression("gzip")
	require.Error(t, err)
}
