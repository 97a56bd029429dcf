package key

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func roundTrip[T any](t *testing.T, c Codec[T], values []T) {
	t.Helper()
	for _, v := range values {
		b, err := Encode(c, v)
		require.NoError(t, err)
		got, rest, err := c.Decode(append(b, 0x01, 0x02))
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, []byte{0x01, 0x02}, rest)
	}
}

// requireSorted checks that values, given in ascending order, encode to
// strictly ascending byte strings.
func requireSorted[T any](t *testing.T, c Codec[T], values []T) {
	t.Helper()
	var prev []byte
	for i, v := range values {
		b, err := Encode(c, v)
		require.NoError(t, err)
		if i > 0 {
			require.Equal(t, -1, bytes.Compare(prev, b), "%v should sort before %v", values[i-1], v)
		}
		prev = b
	}
}

func TestUnsigned(t *testing.T) {
	u64 := []uint64{0, 1, 255, 256, 1 << 32, math.MaxUint64 - 1, math.MaxUint64}
	roundTrip(t, Uint64, u64)
	requireSorted(t, Uint64, u64)

	u16 := []uint16{0, 1, 0x00ff, 0x0100, math.MaxUint16}
	roundTrip(t, Uint16, u16)
	requireSorted(t, Uint16, u16)

	roundTrip(t, Uint8, []uint8{0, 7, 255})
	roundTrip(t, Uint32, []uint32{0, 1 << 31, math.MaxUint32})

	b, err := Encode(Uint32, 0x01020304)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, b)
}

func TestSigned(t *testing.T) {
	i64 := []int64{math.MinInt64, -1 << 40, -256, -1, 0, 1, 255, 1 << 40, math.MaxInt64}
	roundTrip(t, Int64, i64)
	requireSorted(t, Int64, i64)

	i8 := []int8{math.MinInt8, -1, 0, 1, math.MaxInt8}
	roundTrip(t, Int8, i8)
	requireSorted(t, Int8, i8)

	i16 := []int16{math.MinInt16, -300, -1, 0, 300, math.MaxInt16}
	roundTrip(t, Int16, i16)
	requireSorted(t, Int16, i16)

	i32 := []int32{math.MinInt32, -70000, -1, 0, 70000, math.MaxInt32}
	roundTrip(t, Int32, i32)
	requireSorted(t, Int32, i32)

	b, err := Encode(Int8, -1)
	require.NoError(t, err)
	require.Equal(t, []byte{0x7f}, b)
	b, err = Encode(Int8, math.MinInt8)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, b)
}

func TestFixedWidthShortInput(t *testing.T) {
	_, _, err := Uint64.Decode([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrNotEnoughBytes)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, uint64(8), de.Expected)
	require.Equal(t, uint64(3), de.Available)

	_, _, err = Int16.Decode([]byte{1})
	require.ErrorIs(t, err, ErrNotEnoughBytes)
}

func TestString(t *testing.T) {
	values := []string{"", "a", "bar", "héllo", strings.Repeat("x", 15), strings.Repeat("y", 16), strings.Repeat("z", 70000)}
	roundTrip(t, String, values)

	b, err := Encode(String, "bar")
	require.NoError(t, err)
	require.Equal(t, []byte{3, 'b', 'a', 'r'}, b)
}

func TestStringOrderingByLength(t *testing.T) {
	// Same-length strings sort lexicographically; shorter strings sort first.
	values := []string{"", "a", "b", "zz", "aaa", strings.Repeat("a", 20), strings.Repeat("a", 300)}
	requireSorted(t, String, values)

	same := []string{"pear", "kiwi", "plum", "date", "lime"}
	sort.Strings(same)
	requireSorted(t, String, same)
}

func TestStringInvalidText(t *testing.T) {
	_, _, err := String.Decode([]byte{2, 0xff, 0xfe})
	require.ErrorIs(t, err, ErrInvalidText)

	// Raw bytes accept the same payload.
	v, rest, err := Bytes.Decode([]byte{2, 0xff, 0xfe})
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xfe}, v)
	require.Empty(t, rest)
}

func TestVariableShortPayload(t *testing.T) {
	_, _, err := String.Decode([]byte{5, 'a', 'b'})
	require.ErrorIs(t, err, ErrNotEnoughBytes)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, uint64(5), de.Expected)
	require.Equal(t, uint64(2), de.Available)

	_, _, err = Bytes.Decode(nil)
	require.ErrorIs(t, err, ErrNotEnoughBytes)
}

func TestBytesDecodeCopies(t *testing.T) {
	src := []byte{2, 'o', 'k'}
	v, _, err := Bytes.Decode(src)
	require.NoError(t, err)
	src[1] = 'X'
	require.Equal(t, []byte("ok"), v)
}

func TestUnit(t *testing.T) {
	b, err := Encode(Unit, struct{}{})
	require.NoError(t, err)
	require.Empty(t, b)
	_, rest, err := Unit.Decode([]byte{9})
	require.NoError(t, err)
	require.Equal(t, []byte{9}, rest)
}

func TestOptional(t *testing.T) {
	c := Optional(String)

	b, err := Encode(c, None[string]())
	require.NoError(t, err)
	require.Empty(t, b)

	v, _, err := c.Decode(nil)
	require.NoError(t, err)
	require.False(t, v.Valid)

	b, err = Encode(c, Some("x"))
	require.NoError(t, err)
	v, rest, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, Some("x"), v)
	require.Empty(t, rest)

	_, _, err = c.Decode([]byte{4, 'x'})
	require.ErrorIs(t, err, ErrNotEnoughBytes)
}

func TestDecodePartial(t *testing.T) {
	_, ok, rest, err := DecodePartial(String, nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, rest)

	v, ok, rest, err := DecodePartial(String, []byte{1, 'q', 7})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "q", v)
	require.Equal(t, []byte{7}, rest)

	_, ok, _, err = DecodePartial(Uint64, []byte{1})
	require.False(t, ok)
	require.ErrorIs(t, err, ErrNotEnoughBytes)
}

func TestTuple(t *testing.T) {
	c := Tuple2(String, Int32)
	values := []T2[string, int32]{
		{"a", -5}, {"a", 0}, {"a", 9}, {"b", math.MinInt32}, {"bb", 0},
	}
	roundTrip(t, c, values)
	requireSorted(t, c, values)

	c3 := Tuple3(Uint8, String, Bytes)
	roundTrip(t, c3, []T3[uint8, string, []byte]{{1, "x", []byte{0}}, {2, "", []byte{}}})

	// Second segment malformed.
	b, err := Encode(String, "k")
	require.NoError(t, err)
	_, _, err = c.Decode(append(b, 0x80))
	var se *SegmentError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 1, se.Position)
	require.ErrorIs(t, err, ErrNotEnoughBytes)
}

func TestCompound(t *testing.T) {
	c := Compound{Erase(String), Erase(Index), Erase(Int64)}

	b, err := c.Encode("foo", uint64(3), int64(-2))
	require.NoError(t, err)

	s, _ := Encode(String, "foo")
	i, _ := Encode(Index, 3)
	n, _ := Encode(Int64, -2)
	require.Equal(t, append(append(s, i...), n...), b)

	got, rest, err := c.Decode(b)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Empty(t, cmp.Diff([]any{"foo", uint64(3), int64(-2)}, got))

	// Truncated at a segment boundary.
	p, rest, err := c.DecodePartial(b[:len(s)+len(i)])
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Empty(t, cmp.Diff(Partial{"foo", uint64(3)}, p))

	p, _, err = c.DecodePartial(nil)
	require.NoError(t, err)
	require.Empty(t, p)

	// Truncated inside a segment.
	_, _, err = c.DecodePartial(b[:len(s)+3])
	var se *SegmentError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 1, se.Position)

	_, _, err = c.Decode(b[:len(s)])
	require.ErrorAs(t, err, &se)
	require.Equal(t, 1, se.Position)
	require.ErrorIs(t, err, ErrNotEnoughBytes)

	_, err = c.Encode("foo", "not an index")
	require.ErrorAs(t, err, &se)
	var ee *EncodeError
	require.ErrorAs(t, err, &ee)

	_, err = c.Encode("a", uint64(1), int64(1), "extra")
	require.Error(t, err)
}

func TestCompoundOrdering(t *testing.T) {
	c := Compound{Erase(String), Erase(Int16)}
	rows := [][]any{
		{"", int16(5)},
		{"a", int16(-1)},
		{"a", int16(0)},
		{"ab", int16(-100)},
		{"b", int16(math.MinInt16)},
	}
	var prev []byte
	for i, r := range rows {
		b, err := c.Encode(r...)
		require.NoError(t, err)
		if i > 0 {
			require.Equal(t, -1, bytes.Compare(prev, b), "row %d", i)
		}
		prev = b
	}
}
