package libkv

import (
	"github.com/pkg/errors"

	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/store"
)

var itemSchema = (&Schema{Kind: Leaf, Name: "item"}).validate()

// Item is a single value stored at exactly its prefix.
type Item[T any] struct {
	prefix []byte
	codec  codec.Codec[T]
}

// NewItem returns an Item at prefix whose value is encoded with c.
func NewItem[T any](prefix []byte, c codec.Codec[T]) Item[T] {
	if c == nil {
		panic("libkv: item needs a value codec")
	}
	return Item[T]{prefix: prefix, codec: c}
}

func (i Item[T]) Prefix() []byte                   { return i.prefix }
func (i Item[T]) Schema() *Schema                  { return itemSchema }
func (i Item[T]) Values() codec.Codec[T]           { return i.codec }
func (i Item[T]) WithPrefix(prefix []byte) Item[T] { return Item[T]{prefix: prefix, codec: i.codec} }

// MayLoad returns the stored value. ok is false when nothing is stored.
func (i Item[T]) MayLoad(r store.Reader) (v T, ok bool, err error) {
	raw, err := r.GetRaw(i.prefix)
	if errors.Is(err, store.ErrKeyNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, wrapErr(Backend, i.prefix, err)
	}
	v, err = i.codec.Decode(raw)
	if err != nil {
		return v, false, wrapErr(ValueDecode, i.prefix, err)
	}
	return v, true, nil
}

// Load is MayLoad with a missing value reported as ErrNotFound.
func (i Item[T]) Load(r store.Reader) (T, error) {
	v, ok, err := i.MayLoad(r)
	if err == nil && !ok {
		err = errors.WithStack(ErrNotFound)
	}
	return v, err
}

// Exists reports whether a value is stored, without decoding it.
func (i Item[T]) Exists(r store.Reader) (bool, error) {
	_, err := r.GetRaw(i.prefix)
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
		return false, nil
	case err != nil:
		return false, wrapErr(Backend, i.prefix, err)
	default:
		return true, nil
	}
}

// Save stores v, replacing any previous value.
func (i Item[T]) Save(w store.Writer, v T) error {
	raw, err := i.codec.Encode(v)
	if err != nil {
		return wrapErr(ValueEncode, i.prefix, err)
	}
	return wrapErr(Backend, i.prefix, w.SetRaw(i.prefix, raw))
}

// Delete removes the value. Deleting a missing value is not an error.
func (i Item[T]) Delete(w store.Writer) error {
	return wrapErr(Backend, i.prefix, w.DeleteRaw(i.prefix))
}

// Update loads the value, applies fn and saves the result. It issues two
// raw operations and is only atomic inside a backend transaction.
func (i Item[T]) Update(s store.Storage, fn func(v T, ok bool) (T, error)) (T, error) {
	old, ok, err := i.MayLoad(s)
	if err != nil {
		return old, err
	}
	v, err := fn(old, ok)
	if err != nil {
		return old, err
	}
	return v, i.Save(s, v)
}
