package libkv

import (
	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

// Map maps keys of type K to inner containers of type C. The inner
// container for k lives at the map prefix followed by the encoding of k.
type Map[K any, C Container[C, T], T any] struct {
	prefix []byte
	keys   key.Codec[K]
	inner  C
	schema *Schema
}

// NewMap returns a Map at prefix. inner is a template whose own prefix is
// ignored. T, the leaf value type, must be given explicitly:
//
//	m := libkv.NewMap[string]([]byte("users"), key.String, libkv.NewItem(nil, codec.String))
func NewMap[T, K any, C Container[C, T]](prefix []byte, keys key.Codec[K], inner C) Map[K, C, T] {
	return newMap[T]("map", prefix, keys, inner)
}

func newMap[T, K any, C Container[C, T]](name string, prefix []byte, keys key.Codec[K], inner C) Map[K, C, T] {
	if keys == nil {
		panic("libkv: " + name + " needs a key codec")
	}
	return Map[K, C, T]{
		prefix: prefix,
		keys:   keys,
		inner:  inner,
		schema: branchSchema(name, key.Erase(keys), inner.Schema(), false),
	}
}

func (m Map[K, C, T]) Prefix() []byte         { return m.prefix }
func (m Map[K, C, T]) Schema() *Schema        { return m.schema }
func (m Map[K, C, T]) Values() codec.Codec[T] { return m.inner.Values() }

func (m Map[K, C, T]) WithPrefix(prefix []byte) Map[K, C, T] {
	m.prefix = prefix
	return m
}

// Key returns the raw prefix of the entry for k.
func (m Map[K, C, T]) Key(k K) ([]byte, error) {
	raw, err := m.keys.Append(join(m.prefix, nil), k)
	if err != nil {
		return nil, wrapErr(KeyEncode, m.prefix, err)
	}
	return raw, nil
}

// At returns the inner container for k. It fails only if k cannot be encoded.
func (m Map[K, C, T]) At(k K) (C, error) {
	raw, err := m.Key(k)
	if err != nil {
		var zero C
		return zero, err
	}
	return m.inner.WithPrefix(raw), nil
}

// Range scans the entries between low and high. Entries nested below a
// bound key are inside the bound.
func (m Map[K, C, T]) Range(s store.Ranger, low, high Bound[K], order store.Order) (*Iterator[K, T], error) {
	return m.spec().open(s, low, high, order)
}

// All scans every entry of the map.
func (m Map[K, C, T]) All(s store.Ranger, order store.Order) (*Iterator[K, T], error) {
	return m.Range(s, Unbounded[K](), Unbounded[K](), order)
}

func (m Map[K, C, T]) spec() rangeSpec[K, T] {
	return rangeSpec[K, T]{prefix: m.prefix, schema: m.schema, keys: m.keys, values: m.inner.Values()}
}
