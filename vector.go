package libkv

import (
	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

// lengthCodec stores vector lengths with the index key encoding.
var lengthCodec = codec.Key(key.Index)

// Vector is a dense sequence of inner containers indexed from zero. Its
// length is kept at exactly its own prefix; range scans never yield it.
type Vector[C Container[C, T], T any] struct {
	prefix []byte
	elems  Map[uint64, C, T]
	length Item[uint64]
	schema *Schema
}

// NewVector returns a Vector at prefix. inner is a template whose own prefix
// is ignored.
func NewVector[T any, C Container[C, T]](prefix []byte, inner C) Vector[C, T] {
	return newVector[T]("vector", prefix, inner)
}

func newVector[T any, C Container[C, T]](name string, prefix []byte, inner C) Vector[C, T] {
	return Vector[C, T]{
		prefix: prefix,
		elems:  newMap[T](name, prefix, key.Index, inner),
		length: NewItem(prefix, lengthCodec),
		schema: branchSchema(name, key.Erase(key.Index), inner.Schema(), true),
	}
}

func (v Vector[C, T]) Prefix() []byte         { return v.prefix }
func (v Vector[C, T]) Schema() *Schema        { return v.schema }
func (v Vector[C, T]) Values() codec.Codec[T] { return v.elems.Values() }

func (v Vector[C, T]) WithPrefix(prefix []byte) Vector[C, T] {
	v.prefix = prefix
	v.elems = v.elems.WithPrefix(prefix)
	v.length = v.length.WithPrefix(prefix)
	return v
}

// Len returns the number of elements, zero if the vector was never written.
func (v Vector[C, T]) Len(r store.Reader) (uint64, error) {
	n, _, err := v.length.MayLoad(r)
	return n, err
}

// At returns the element container at index i. It does not check i against
// the length.
func (v Vector[C, T]) At(i uint64) C {
	c, err := v.elems.At(i)
	if err != nil {
		// Index encoding cannot fail.
		panic(err)
	}
	return c
}

// PushWith appends an element: it reads the length, lets fill write the new
// element container, then stores the new length. The steps are separate
// raw operations.
func (v Vector[C, T]) PushWith(s store.Storage, fill func(elem C) error) (uint64, error) {
	n, err := v.Len(s)
	if err != nil {
		return 0, err
	}
	if err := fill(v.At(n)); err != nil {
		return 0, err
	}
	return n, v.length.Save(s, n+1)
}

// setLen stores n as the length without touching any element.
func (v Vector[C, T]) setLen(w store.Writer, n uint64) error {
	return v.length.Save(w, n)
}

// Range scans the elements between low and high.
func (v Vector[C, T]) Range(s store.Ranger, low, high Bound[uint64], order store.Order) (*Iterator[uint64, T], error) {
	return v.spec().open(s, low, high, order)
}

// All scans every element.
func (v Vector[C, T]) All(s store.Ranger, order store.Order) (*Iterator[uint64, T], error) {
	return v.Range(s, Unbounded[uint64](), Unbounded[uint64](), order)
}

func (v Vector[C, T]) spec() rangeSpec[uint64, T] {
	return rangeSpec[uint64, T]{prefix: v.prefix, schema: v.schema, keys: key.Index, values: v.Values()}
}

// List is a Vector of Items with push and pop at the end.
type List[T any] struct {
	Vector[Item[T], T]
}

// NewList returns a List at prefix whose values are encoded with c.
func NewList[T any](prefix []byte, c codec.Codec[T]) List[T] {
	return List[T]{newVector[T]("list", prefix, NewItem(nil, c))}
}

func (l List[T]) WithPrefix(prefix []byte) List[T] {
	return List[T]{l.Vector.WithPrefix(prefix)}
}

// Push appends val and returns its index.
func (l List[T]) Push(s store.Storage, val T) (uint64, error) {
	return l.PushWith(s, func(elem Item[T]) error { return elem.Save(s, val) })
}

// Pop removes and returns the last element. ok is false for an empty list.
func (l List[T]) Pop(s store.Storage) (val T, ok bool, err error) {
	n, err := l.Len(s)
	if err != nil || n == 0 {
		return val, false, err
	}
	last := l.At(n - 1)
	if val, _, err = last.MayLoad(s); err != nil {
		return val, false, err
	}
	if err = last.Delete(s); err != nil {
		return val, false, err
	}
	if err = l.setLen(s, n-1); err != nil {
		return val, false, err
	}
	return val, true, nil
}

// Get returns the element at i. ok is false past the end.
func (l List[T]) Get(r store.Reader, i uint64) (T, bool, error) {
	return l.At(i).MayLoad(r)
}

// Set replaces the element at i, which must be below the length.
func (l List[T]) Set(s store.Storage, i uint64, val T) error {
	n, err := l.Len(s)
	if err != nil {
		return err
	}
	if i >= n {
		return ErrIndexOutOfRange
	}
	return l.At(i).Save(s, val)
}
