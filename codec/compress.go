package codec

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Compression selects the block algorithm used by Compressed.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression maps a configuration name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, errors.Errorf("unknown compression %q", name)
	}
}

// blockHeaderSize covers the uncompressed and compressed sizes. A compressed
// size of zero marks a value stored as is.
const blockHeaderSize = 8

var (
	errBlockTooSmall = errors.New("compressed value too small")
	errSizeMismatch  = errors.New("decompressed size mismatch")
	errValueTooLarge = errors.New("value too large to compress")
)

var (
	zstdEncoderOnce sync.Once
	zstdEncoder     *zstd.Encoder
	zstdEncoderErr  error

	zstdDecoderOnce sync.Once
	zstdDecoder     *zstd.Decoder
	zstdDecoderErr  error
)

func getZstdEncoder() (*zstd.Encoder, error) {
	zstdEncoderOnce.Do(func() {
		zstdEncoder, zstdEncoderErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return zstdEncoder, zstdEncoderErr
}

func getZstdDecoder() (*zstd.Decoder, error) {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, zstdDecoderErr = zstd.NewReader(nil)
	})
	return zstdDecoder, zstdDecoderErr
}

// Compressed wraps inner so that encoded values are block compressed.
// Values that do not shrink are stored uncompressed.
func Compressed[T any](inner Codec[T], c Compression) Codec[T] {
	return compressed[T]{inner: inner, algo: c}
}

type compressed[T any] struct {
	inner Codec[T]
	algo  Compression
}

func (c compressed[T]) Encode(v T) ([]byte, error) {
	data, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	block, err := compressBlock(data, c.algo)
	if err != nil {
		return nil, errors.Wrap(err, c.algo.String())
	}
	return block, nil
}

func (c compressed[T]) Decode(b []byte) (T, error) {
	data, err := decompressBlock(b, c.algo)
	if err != nil {
		var zero T
		return zero, errors.Wrap(err, c.algo.String())
	}
	return c.inner.Decode(data)
}

func compressBlock(data []byte, algo Compression) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, errValueTooLarge
	}
	var body []byte
	switch algo {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		body = buf[:n]
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		body = enc.EncodeAll(data, nil)
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+len(data))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	if len(body) == 0 || len(body) >= len(data) {
		binary.LittleEndian.PutUint32(out[4:], 0)
		return append(out, data...), nil
	}
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	return append(out, body...), nil
}

func decompressBlock(b []byte, algo Compression) ([]byte, error) {
	if len(b) < blockHeaderSize {
		return nil, errBlockTooSmall
	}
	size := binary.LittleEndian.Uint32(b[0:])
	csize := binary.LittleEndian.Uint32(b[4:])
	body := b[blockHeaderSize:]

	if csize == 0 {
		if uint64(len(body)) != uint64(size) {
			return nil, errBlockTooSmall
		}
		return body, nil
	}
	if uint64(len(body)) != uint64(csize) {
		return nil, errBlockTooSmall
	}

	switch algo {
	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, err
		}
		if uint32(n) != size {
			return nil, errSizeMismatch
		}
		return out, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		out, err := dec.DecodeAll(body, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if uint32(len(out)) != size {
			return nil, errSizeMismatch
		}
		return out, nil
	default:
		return nil, errors.Errorf("compressed block with compression %s", algo)
	}
}
