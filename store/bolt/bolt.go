// Package bolt adapts a bbolt file to the store contract. All entries live in
// one bucket.
package bolt

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/AmitPr/libkv/internal/logging"
	"github.com/AmitPr/libkv/store"
)

// DefaultBucket holds the entries unless WithBucket says otherwise.
var DefaultBucket = []byte("libkv")

func translateError(e error) error {
	switch {
	case e == nil:
		return nil
	case errors.Is(e, bolt.ErrKeyRequired):
		return store.ErrEmptyKey
	case errors.Is(e, bolt.ErrTxNotWritable):
		return store.ErrReadOnlyTxn
	case errors.Is(e, bolt.ErrTxClosed):
		return store.ErrDiscardedTxn
	case errors.Is(e, bolt.ErrDatabaseNotOpen):
		return store.ErrClosed
	default:
		return store.NewBackendError(e)
	}
}

type config struct {
	bucket  []byte
	timeout time.Duration
	noSync  bool
	log     *slog.Logger
}

// Option configures Open.
type Option func(*config)

func WithLogger(l *slog.Logger) Option { return func(c *config) { c.log = l } }

func WithBucket(name []byte) Option { return func(c *config) { c.bucket = name } }

// WithTimeout bounds the wait for the file lock.
func WithTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// WithNoSync skips fsync on commit.
func WithNoSync(noSync bool) Option { return func(c *config) { c.noSync = noSync } }

// DB is a store.DB backed by a bbolt file.
type DB struct {
	db     *bolt.DB
	bucket []byte
	log    *slog.Logger
}

var (
	_ store.DB      = (*DB)(nil)
	_ store.Storage = (*DB)(nil)
)

// Open opens or creates the file at path.
func Open(path string, options ...Option) (*DB, error) {
	c := &config{bucket: DefaultBucket, timeout: time.Second}
	for _, o := range options {
		o(c)
	}
	c.log = logging.OrNop(c.log)

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, errors.Wrapf(err, "mkdir %s", filepath.Dir(path))
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: c.timeout, NoSync: c.noSync})
	if err != nil {
		return nil, errors.Wrapf(err, "open file: %s", path)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(c.bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "create bucket %s", c.bucket)
	}
	c.log.Info("bolt store opened", "path", path, "bucket", string(c.bucket))
	return &DB{db: db, bucket: c.bucket, log: c.log}, nil
}

func (db *DB) Close() error {
	db.log.Info("bolt store closing", "path", db.db.Path())
	return translateError(db.db.Close())
}

func (db *DB) View(f func(store.Txn) error) error {
	err := db.db.View(func(tx *bolt.Tx) error {
		return f(&Txn{b: tx.Bucket(db.bucket)})
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return store.ErrClosed
	}
	return err
}

func (db *DB) Update(f func(store.Txn) error) error {
	err := db.db.Update(func(tx *bolt.Tx) error {
		return f(&Txn{b: tx.Bucket(db.bucket), writable: true})
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return store.ErrClosed
	}
	return err
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

// RangeRaw scans in a read transaction that is rolled back when the iterator
// is closed.
func (db *DB) RangeRaw(low, high store.Bound, order store.Order) (store.RawIterator, error) {
	if store.IsEmptyRange(low, high) {
		return store.Empty(), nil
	}
	tx, err := db.db.Begin(false)
	if err != nil {
		return nil, translateError(err)
	}
	c := newCursor(tx.Bucket(db.bucket), order)
	c.release = func() { _ = tx.Rollback() }
	return store.NewIterator(c, low, high, order), nil
}

// Txn adapts one bolt transaction.
type Txn struct {
	b        *bolt.Bucket
	writable bool
}

func (t *Txn) Writable() bool { return t.writable }

func (t *Txn) GetRaw(key []byte) ([]byte, error) {
	k, v := t.b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, store.ErrKeyNotFound
	}
	return append([]byte{}, v...), nil
}

// SetRaw copies key and value; bolt keeps references until commit.
func (t *Txn) SetRaw(key, value []byte) error {
	k := append([]byte(nil), key...)
	v := append([]byte{}, value...)
	return translateError(t.b.Put(k, v))
}

func (t *Txn) DeleteRaw(key []byte) error {
	return translateError(t.b.Delete(key))
}

func (t *Txn) RangeRaw(low, high store.Bound, order store.Order) (store.RawIterator, error) {
	if store.IsEmptyRange(low, high) {
		return store.Empty(), nil
	}
	return store.NewIterator(newCursor(t.b, order), low, high, order), nil
}

// cursor drives a bolt cursor in one direction.
type cursor struct {
	c       *bolt.Cursor
	order   store.Order
	key     []byte
	value   []byte
	release func()
}

func newCursor(b *bolt.Bucket, order store.Order) *cursor {
	return &cursor{c: b.Cursor(), order: order}
}

func (c *cursor) Seek(target []byte) {
	c.key, c.value = c.c.Seek(target)
	if c.order != store.Descending {
		return
	}
	if c.key == nil {
		c.key, c.value = c.c.Last()
	} else if !bytes.Equal(c.key, target) {
		c.key, c.value = c.c.Prev()
	}
}

func (c *cursor) Rewind() {
	if c.order == store.Descending {
		c.key, c.value = c.c.Last()
	} else {
		c.key, c.value = c.c.First()
	}
}

func (c *cursor) Next() {
	if c.order == store.Descending {
		c.key, c.value = c.c.Prev()
	} else {
		c.key, c.value = c.c.Next()
	}
}

func (c *cursor) Valid() bool { return c.key != nil }
func (c *cursor) Key() []byte { return c.key }

func (c *cursor) Value() ([]byte, error) {
	return append([]byte{}, c.value...), nil
}

func (c *cursor) Close() {
	c.key, c.value = nil, nil
	if c.release != nil {
		c.release()
		c.release = nil
	}
}
