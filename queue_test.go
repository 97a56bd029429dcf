package libkv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

func TestPriorityQueue(t *testing.T) {
	s := newStorage(t)
	q := NewPriorityQueue([]byte("pq"), key.Uint32, codec.String)

	_, _, ok, err := q.Peek(s, store.Ascending)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, q.Push(s, 3, "third"))
	require.NoError(t, q.Push(s, 1, "first"))
	require.NoError(t, q.Push(s, 2, "second"))

	p, v, ok, err := q.Peek(s, store.Ascending)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(1), p)
	require.Equal(t, "first", v)

	p, v, ok, err = q.Peek(s, store.Descending)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(3), p)
	require.Equal(t, "third", v)

	var order []uint32
	for {
		p, _, ok, err := q.Pop(s, store.Ascending)
		require.NoError(t, err)
		if !ok {
			break
		}
		order = append(order, p)
	}
	require.Equal(t, []uint32{1, 2, 3}, order)
	require.Zero(t, rawCount(t, s, q.Prefix()))
}

func TestPriorityQueueReplace(t *testing.T) {
	s := newStorage(t)
	q := NewPriorityQueue([]byte("pq"), key.Uint8, codec.String)
	require.NoError(t, q.Push(s, 5, "old"))
	require.NoError(t, q.Push(s, 5, "new"))

	it, err := q.Range(s, Unbounded[uint8](), Unbounded[uint8](), store.Ascending)
	entries := collect(t, it, err)
	require.Len(t, entries, 1)
	require.Equal(t, "new", entries[0].Value)
}

func TestPriorityQueueSigned(t *testing.T) {
	s := newStorage(t)
	q := NewPriorityQueue([]byte("deadlines"), key.Int64, codec.String)
	for _, p := range []int64{3, -5, 0, -1, 1 << 40, -(1 << 40)} {
		require.NoError(t, q.Push(s, p, "job"))
	}

	it, err := q.Range(s, Unbounded[int64](), Unbounded[int64](), store.Ascending)
	require.Equal(t, []int64{-(1 << 40), -5, -1, 0, 3, 1 << 40}, keysOf(collect(t, it, err)))

	it, err = q.Range(s, Excluded[int64](-5), Included[int64](0), store.Ascending)
	require.Equal(t, []int64{-1, 0}, keysOf(collect(t, it, err)))

	p, _, ok, err := q.Pop(s, store.Descending)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1<<40), p)
}

func TestPriorityQueueCompoundPriority(t *testing.T) {
	s := newStorage(t)
	// Ties on the first field break on the second.
	q := NewPriorityQueue([]byte("q"), key.Tuple2(key.Uint8, key.String), codec.String)
	require.NoError(t, q.Push(s, key.T2[uint8, string]{A: 1, B: "b"}, "1b"))
	require.NoError(t, q.Push(s, key.T2[uint8, string]{A: 0, B: "z"}, "0z"))
	require.NoError(t, q.Push(s, key.T2[uint8, string]{A: 1, B: "a"}, "1a"))

	var got []string
	for {
		_, v, ok, err := q.Pop(s, store.Ascending)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []string{"0z", "1a", "1b"}, got)
}
