package libkv

import (
	"bytes"
	"iter"

	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

// Entry is one element yielded by a range scan. Key is the segment of the
// ranged container; Inner holds the segments of nested containers, outermost
// first.
type Entry[K, T any] struct {
	Key   K
	Inner key.Partial
	Value T
}

// Iterator walks the entries of a container in key order, rebuilding typed
// keys and hiding metadata entries. The first error ends the iteration and
// is reported by Err.
type Iterator[K, T any] struct {
	raw    store.RawIterator
	prefix []byte
	schema *Schema
	keys   key.Codec[K]
	values codec.Codec[T]

	cur    Entry[K, T]
	rawKey []byte
	err    error
	done   bool
}

// rangeSpec carries what a branch container needs to open an Iterator.
type rangeSpec[K, T any] struct {
	prefix []byte
	schema *Schema
	keys   key.Codec[K]
	values codec.Codec[T]
}

// rawBounds translates typed bounds into raw bounds under the prefix. A
// bound on k covers every entry nested below k as well. empty is true when
// no key can satisfy both bounds.
func (r rangeSpec[K, T]) rawBounds(low, high Bound[K]) (rl, rh store.Bound, empty bool, err error) {
	var lk, hk []byte
	if low.kind != store.Unbounded {
		if lk, err = r.keys.Append(join(r.prefix, nil), low.key); err != nil {
			return rl, rh, false, wrapErr(KeyEncode, r.prefix, err)
		}
	}
	if high.kind != store.Unbounded {
		if hk, err = r.keys.Append(join(r.prefix, nil), high.key); err != nil {
			return rl, rh, false, wrapErr(KeyEncode, r.prefix, err)
		}
	}
	if store.IsEmptyRange(store.Bound{Kind: low.kind, Key: lk}, store.Bound{Kind: high.kind, Key: hk}) {
		return rl, rh, true, nil
	}

	rl, rh = store.PrefixBounds(r.prefix)
	switch low.kind {
	case store.Included:
		rl = store.Include(lk)
	case store.Excluded:
		end := store.PrefixEnd(lk)
		if end == nil {
			return rl, rh, true, nil
		}
		rl = store.Include(end)
	}
	switch high.kind {
	case store.Included:
		if end := store.PrefixEnd(hk); end != nil {
			rh = store.Exclude(end)
		}
	case store.Excluded:
		rh = store.Exclude(hk)
	}
	return rl, rh, false, nil
}

func (r rangeSpec[K, T]) open(s store.Ranger, low, high Bound[K], order store.Order) (*Iterator[K, T], error) {
	rl, rh, empty, err := r.rawBounds(low, high)
	if err != nil {
		return nil, err
	}
	it := &Iterator[K, T]{prefix: r.prefix, schema: r.schema, keys: r.keys, values: r.values}
	if empty {
		it.done = true
		return it, nil
	}
	raw, err := s.RangeRaw(rl, rh, order)
	if err != nil {
		return nil, wrapErr(Backend, r.prefix, err)
	}
	it.raw = raw
	return it, nil
}

// Next advances to the next data entry.
func (it *Iterator[K, T]) Next() bool {
	for !it.done {
		if !it.raw.Next() {
			if err := it.raw.Err(); err != nil {
				it.fail(wrapErr(Backend, it.prefix, err))
			} else {
				it.Close()
			}
			return false
		}
		rawKey := it.raw.Key()
		if !bytes.HasPrefix(rawKey, it.prefix) {
			it.Close()
			return false
		}
		e, skip, err := it.decode(rawKey[len(it.prefix):])
		if err != nil {
			it.fail(wrapErr(KeyDecode, rawKey, err))
			return false
		}
		if skip {
			continue
		}
		if e.Value, err = it.values.Decode(it.raw.Value()); err != nil {
			it.fail(wrapErr(ValueDecode, rawKey, err))
			return false
		}
		it.cur = e
		it.rawKey = rawKey
		return true
	}
	return false
}

// decode rebuilds the typed key below the prefix and applies the metadata
// policy of every level it passes.
func (it *Iterator[K, T]) decode(rest []byte) (e Entry[K, T], skip bool, err error) {
	if len(rest) == 0 {
		if it.schema.Skip(false) {
			return e, true, nil
		}
		return e, false, key.ErrIncompleteKey
	}
	if e.Key, rest, err = it.keys.Decode(rest); err != nil {
		return e, false, &key.SegmentError{Position: 0, Err: err}
	}
	if it.schema.Skip(true) {
		return e, true, nil
	}
	pos := 1
	for level := it.schema.Inner; level.Kind == Branch; level = level.Inner {
		if len(rest) == 0 {
			if level.Skip(false) {
				return e, true, nil
			}
			return e, false, &key.SegmentError{Position: pos, Err: key.ErrIncompleteKey}
		}
		var v any
		if v, rest, err = level.Segment.DecodeAny(rest); err != nil {
			return e, false, &key.SegmentError{Position: pos, Err: err}
		}
		if level.Skip(true) {
			return e, true, nil
		}
		e.Inner = append(e.Inner, v)
		pos++
	}
	if len(rest) != 0 {
		return e, false, &key.SegmentError{Position: pos, Err: key.ErrTrailingBytes}
	}
	return e, false, nil
}

func (it *Iterator[K, T]) fail(err error) {
	it.err = err
	it.Close()
}

// Entry returns the entry Next moved to.
func (it *Iterator[K, T]) Entry() Entry[K, T] { return it.cur }

// RawKey returns the stored key of the current entry. It is valid until the
// next call to Next.
func (it *Iterator[K, T]) RawKey() []byte { return it.rawKey }

// Err returns the error that ended the iteration, if any.
func (it *Iterator[K, T]) Err() error { return it.err }

// Close releases the backend cursor. It is safe to call more than once.
func (it *Iterator[K, T]) Close() error {
	it.done = true
	it.cur = Entry[K, T]{}
	it.rawKey = nil
	if it.raw != nil {
		err := it.raw.Close()
		it.raw = nil
		return err
	}
	return nil
}

// All adapts the iterator to a range-over-func sequence. A failure is
// yielded once as the error of a final pair. The iterator is closed when
// the loop ends.
func (it *Iterator[K, T]) All() iter.Seq2[Entry[K, T], error] {
	return func(yield func(Entry[K, T], error) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.cur, nil) {
				return
			}
		}
		if it.err != nil {
			yield(Entry[K, T]{}, it.err)
		}
	}
}

// Collect drains the iterator into a slice.
func (it *Iterator[K, T]) Collect() ([]Entry[K, T], error) {
	var out []Entry[K, T]
	for e, err := range it.All() {
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}
