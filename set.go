package libkv

import (
	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

var unitValues = codec.Key(key.Unit)

// Set is a sorted set of keys. Members are stored as empty values.
type Set[K any] struct {
	m Map[K, Item[struct{}], struct{}]
}

func NewSet[K any](prefix []byte, keys key.Codec[K]) Set[K] {
	return Set[K]{m: newMap[struct{}]("set", prefix, keys, NewItem(nil, unitValues))}
}

func (s Set[K]) Prefix() []byte                { return s.m.Prefix() }
func (s Set[K]) Schema() *Schema               { return s.m.Schema() }
func (s Set[K]) Values() codec.Codec[struct{}] { return unitValues }
func (s Set[K]) WithPrefix(prefix []byte) Set[K] {
	return Set[K]{m: s.m.WithPrefix(prefix)}
}

func (s Set[K]) Add(w store.Writer, k K) error {
	it, err := s.m.At(k)
	if err != nil {
		return err
	}
	return it.Save(w, struct{}{})
}

func (s Set[K]) Contains(r store.Reader, k K) (bool, error) {
	it, err := s.m.At(k)
	if err != nil {
		return false, err
	}
	return it.Exists(r)
}

func (s Set[K]) Remove(w store.Writer, k K) error {
	it, err := s.m.At(k)
	if err != nil {
		return err
	}
	return it.Delete(w)
}

// Range scans members between low and high.
func (s Set[K]) Range(r store.Ranger, low, high Bound[K], order store.Order) (*Iterator[K, struct{}], error) {
	return s.m.Range(r, low, high, order)
}

// Members returns every member in order.
func (s Set[K]) Members(r store.Ranger, order store.Order) ([]K, error) {
	it, err := s.m.All(r, order)
	if err != nil {
		return nil, err
	}
	var out []K
	for e, err := range it.All() {
		if err != nil {
			return out, err
		}
		out = append(out, e.Key)
	}
	return out, nil
}
