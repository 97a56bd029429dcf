package store

import (
	"bytes"
)

// Iterator is a range limited iterator over a backend Cursor. It starts at
// the near bound for its order and stops at the far one.
type Iterator struct {
	c       Cursor
	low     Bound
	high    Bound
	order   Order
	started bool
	done    bool
	key     []byte
	value   []byte
	err     error
}

// NewIterator wraps c, which must already be opened in the direction given
// by order. The cursor is closed when the iterator is exhausted or closed.
func NewIterator(c Cursor, low, high Bound, order Order) *Iterator {
	return &Iterator{c: c, low: low, high: high, order: order}
}

func (it *Iterator) start() {
	near := it.low
	if it.order == Descending {
		near = it.high
	}
	if near.Kind == Unbounded {
		it.c.Rewind()
	} else {
		it.c.Seek(near.Key)
	}
	if near.Kind == Excluded && it.c.Valid() && bytes.Equal(it.c.Key(), near.Key) {
		it.c.Next()
	}
}

// valid checks the far bound. The near bound is already honoured by start.
func (it *Iterator) valid() bool {
	if !it.c.Valid() {
		return false
	}
	if it.order == Descending {
		return AboveLow(it.low, it.c.Key())
	}
	return BelowHigh(it.high, it.c.Key())
}

func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		it.start()
	} else {
		it.c.Next()
	}
	if !it.valid() {
		it.finish()
		return false
	}
	v, err := it.c.Value()
	if err != nil {
		it.err = err
		it.finish()
		return false
	}
	it.key = it.c.Key()
	it.value = v
	return true
}

func (it *Iterator) finish() {
	it.done = true
	it.key, it.value = nil, nil
	it.Close()
}

func (it *Iterator) Key() []byte   { return it.key }
func (it *Iterator) Value() []byte { return it.value }
func (it *Iterator) Err() error    { return it.err }

func (it *Iterator) Close() error {
	if it.c != nil {
		it.c.Close()
		it.c = nil
	}
	it.done = true
	return nil
}

// Empty returns an iterator that yields nothing.
func Empty() RawIterator { return emptyIterator{} }

type emptyIterator struct{}

func (emptyIterator) Next() bool    { return false }
func (emptyIterator) Key() []byte   { return nil }
func (emptyIterator) Value() []byte { return nil }
func (emptyIterator) Err() error    { return nil }
func (emptyIterator) Close() error  { return nil }

// Collect drains it into parallel key and value slices and closes it.
func Collect(it RawIterator) (keys, values [][]byte, err error) {
	defer it.Close()
	for it.Next() {
		keys = append(keys, append([]byte(nil), it.Key()...))
		values = append(values, append([]byte(nil), it.Value()...))
	}
	return keys, values, it.Err()
}
