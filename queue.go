package libkv

import (
	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

// PriorityQueue orders values by a priority key. It holds at most one value
// per priority; pushing an existing priority replaces its value.
type PriorityQueue[K, T any] struct {
	m Map[K, Item[T], T]
}

// NewPriorityQueue returns a queue at prefix. keys must be order preserving,
// which every codec in package key is.
func NewPriorityQueue[K, T any](prefix []byte, keys key.Codec[K], values codec.Codec[T]) PriorityQueue[K, T] {
	return PriorityQueue[K, T]{m: newMap[T]("queue", prefix, keys, NewItem(nil, values))}
}

func (q PriorityQueue[K, T]) Prefix() []byte         { return q.m.Prefix() }
func (q PriorityQueue[K, T]) Schema() *Schema        { return q.m.Schema() }
func (q PriorityQueue[K, T]) Values() codec.Codec[T] { return q.m.Values() }

func (q PriorityQueue[K, T]) WithPrefix(prefix []byte) PriorityQueue[K, T] {
	return PriorityQueue[K, T]{m: q.m.WithPrefix(prefix)}
}

// Push stores val under priority.
func (q PriorityQueue[K, T]) Push(w store.Writer, priority K, val T) error {
	it, err := q.m.At(priority)
	if err != nil {
		return err
	}
	return it.Save(w, val)
}

// Peek returns the first entry in order: the smallest priority for
// Ascending, the largest for Descending.
func (q PriorityQueue[K, T]) Peek(s store.Ranger, order store.Order) (priority K, val T, ok bool, err error) {
	it, err := q.m.All(s, order)
	if err != nil {
		return priority, val, false, err
	}
	defer it.Close()
	if !it.Next() {
		return priority, val, false, it.Err()
	}
	e := it.Entry()
	return e.Key, e.Value, true, nil
}

// Pop removes and returns the first entry in order. It peeks then deletes,
// as two raw operations.
func (q PriorityQueue[K, T]) Pop(s store.Storage, order store.Order) (priority K, val T, ok bool, err error) {
	priority, val, ok, err = q.Peek(s, order)
	if err != nil || !ok {
		return priority, val, ok, err
	}
	it, err := q.m.At(priority)
	if err != nil {
		return priority, val, false, err
	}
	if err := it.Delete(s); err != nil {
		return priority, val, false, err
	}
	return priority, val, true, nil
}

// Range scans the queue between two priorities.
func (q PriorityQueue[K, T]) Range(s store.Ranger, low, high Bound[K], order store.Order) (*Iterator[K, T], error) {
	return q.m.Range(s, low, high, order)
}
