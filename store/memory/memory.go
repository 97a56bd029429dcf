// Package memory is an in-process ordered backend. Transactions work on
// copy-on-write snapshots of a B-tree, so readers never block writers.
package memory

import (
	"bytes"
	"iter"
	"log/slog"
	"sync"

	"github.com/google/btree"

	"github.com/AmitPr/libkv/internal/logging"
	"github.com/AmitPr/libkv/store"
)

const degree = 32

type entry struct {
	key   []byte
	value []byte
}

func less(a, b entry) bool { return bytes.Compare(a.key, b.key) < 0 }

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) { db.log = l }
}

// DB is a store.DB that also serves single operations outside a transaction.
type DB struct {
	// wmu serializes Update; mu guards tree and closed.
	wmu    sync.Mutex
	mu     sync.Mutex
	tree   *btree.BTreeG[entry]
	closed bool
	log    *slog.Logger
}

var (
	_ store.DB      = (*DB)(nil)
	_ store.Storage = (*DB)(nil)
)

func New(opts ...Option) *DB {
	db := &DB{tree: btree.NewG[entry](degree, less)}
	for _, o := range opts {
		o(db)
	}
	db.log = logging.OrNop(db.log)
	db.log.Debug("memory store opened")
	return db
}

func (db *DB) snapshot() (*btree.BTreeG[entry], error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, store.ErrClosed
	}
	return db.tree.Clone(), nil
}

func (db *DB) View(fn func(store.Txn) error) error {
	tree, err := db.snapshot()
	if err != nil {
		return err
	}
	return fn(&Txn{tree: tree})
}

func (db *DB) Update(fn func(store.Txn) error) error {
	db.wmu.Lock()
	defer db.wmu.Unlock()
	tree, err := db.snapshot()
	if err != nil {
		return err
	}
	if err := fn(&Txn{tree: tree, writable: true}); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return store.ErrClosed
	}
	db.tree = tree
	return nil
}

func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.closed {
		db.closed = true
		db.log.Debug("memory store closed", "entries", db.tree.Len())
	}
	return nil
}

// Len returns the number of stored entries.
func (db *DB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tree.Len()
}

func (db *DB) GetRaw(key []byte) (v []byte, err error) {
	err = db.View(func(txn store.Txn) error {
		v, err = txn.GetRaw(key)
		return err
	})
	return v, err
}

func (db *DB) SetRaw(key, value []byte) error {
	return db.Update(func(txn store.Txn) error { return txn.SetRaw(key, value) })
}

func (db *DB) DeleteRaw(key []byte) error {
	return db.Update(func(txn store.Txn) error { return txn.DeleteRaw(key) })
}

func (db *DB) RangeRaw(low, high store.Bound, order store.Order) (store.RawIterator, error) {
	if store.IsEmptyRange(low, high) {
		return store.Empty(), nil
	}
	tree, err := db.snapshot()
	if err != nil {
		return nil, err
	}
	return store.NewIterator(newCursor(tree, order), low, high, order), nil
}

// Txn is a transaction over one snapshot of the tree.
type Txn struct {
	tree     *btree.BTreeG[entry]
	writable bool
}

func (t *Txn) Writable() bool { return t.writable }

func (t *Txn) GetRaw(key []byte) ([]byte, error) {
	e, ok := t.tree.Get(entry{key: key})
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return append([]byte{}, e.value...), nil
}

func (t *Txn) SetRaw(key, value []byte) error {
	if !t.writable {
		return store.ErrReadOnlyTxn
	}
	if len(key) == 0 {
		return store.ErrEmptyKey
	}
	t.tree.ReplaceOrInsert(entry{
		key:   append([]byte(nil), key...),
		value: append([]byte{}, value...),
	})
	return nil
}

func (t *Txn) DeleteRaw(key []byte) error {
	if !t.writable {
		return store.ErrReadOnlyTxn
	}
	t.tree.Delete(entry{key: key})
	return nil
}

func (t *Txn) RangeRaw(low, high store.Bound, order store.Order) (store.RawIterator, error) {
	if store.IsEmptyRange(low, high) {
		return store.Empty(), nil
	}
	tree := t.tree
	if t.writable {
		// Writes during the scan must not touch the tree being walked.
		tree = tree.Clone()
	}
	return store.NewIterator(newCursor(tree, order), low, high, order), nil
}

// cursor turns the tree's callback traversal into a pull cursor.
type cursor struct {
	tree  *btree.BTreeG[entry]
	order store.Order
	next  func() (entry, bool)
	stop  func()
	cur   entry
	valid bool
}

func newCursor(tree *btree.BTreeG[entry], order store.Order) *cursor {
	return &cursor{tree: tree, order: order}
}

func (c *cursor) reset(seq iter.Seq[entry]) {
	if c.stop != nil {
		c.stop()
	}
	c.next, c.stop = iter.Pull(seq)
	c.Next()
}

func (c *cursor) Seek(target []byte) {
	pivot := entry{key: target}
	c.reset(func(yield func(entry) bool) {
		if c.order == store.Descending {
			c.tree.DescendLessOrEqual(pivot, yield)
		} else {
			c.tree.AscendGreaterOrEqual(pivot, yield)
		}
	})
}

func (c *cursor) Rewind() {
	c.reset(func(yield func(entry) bool) {
		if c.order == store.Descending {
			c.tree.Descend(yield)
		} else {
			c.tree.Ascend(yield)
		}
	})
}

func (c *cursor) Next() {
	if c.next == nil {
		c.valid = false
		return
	}
	c.cur, c.valid = c.next()
}

func (c *cursor) Valid() bool            { return c.valid }
func (c *cursor) Key() []byte            { return c.cur.key }
func (c *cursor) Value() ([]byte, error) { return c.cur.value, nil }

func (c *cursor) Close() {
	if c.stop != nil {
		c.stop()
		c.stop, c.next = nil, nil
	}
	c.valid = false
}
