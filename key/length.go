package key

import (
	"math/bits"
)

// maxShortLength is the largest length stored in a single header byte.
const maxShortLength = 15

// AppendLength appends the compact length code of n to dst.
//
// Lengths up to 15 take one byte. Longer lengths take a header byte holding
// the payload byte count B in its high nibble and the top four bits of n in
// its low nibble, followed by B big-endian bytes. The encoding sorts in the
// same order as n.
func AppendLength(dst []byte, n uint64) []byte {
	if n <= maxShortLength {
		return append(dst, byte(n))
	}
	b := (bits.Len64(n) + 3) / 8
	high := byte(0)
	if 8*b < 64 {
		high = byte(n >> (8 * b))
	}
	dst = append(dst, byte(b)<<4|high&0x0f)
	for i := b - 1; i >= 0; i-- {
		dst = append(dst, byte(n>>(8*i)))
	}
	return dst
}

// LengthSize returns the number of bytes AppendLength emits for n.
func LengthSize(n uint64) int {
	if n <= maxShortLength {
		return 1
	}
	return 1 + (bits.Len64(n)+3)/8
}

// DecodeLength reads a compact length code from the front of src.
func DecodeLength(src []byte) (uint64, []byte, error) {
	if len(src) == 0 {
		return 0, src, notEnough(1, 0)
	}
	h := src[0]
	b := int(h >> 4)
	if b == 0 {
		return uint64(h), src[1:], nil
	}
	high := uint64(h & 0x0f)
	if b > 8 || (b == 8 && high != 0) {
		return 0, src, ErrInvalidLength
	}
	if len(src) < 1+b {
		return 0, src, notEnough(1+b, len(src))
	}
	n := high
	for _, c := range src[1 : 1+b] {
		n = n<<8 | uint64(c)
	}
	return n, src[1+b:], nil
}
