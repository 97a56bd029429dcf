// Package badger adapts Badger to the store contract.
package badger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/AmitPr/libkv/internal/logging"
	"github.com/AmitPr/libkv/store"
)

const (
	prefetchSize = 100
	gcRatio      = 0.5
)

func translateError(e error) error {
	switch {
	case e == nil:
		return nil
	case errors.Is(e, badger.ErrKeyNotFound):
		return store.ErrKeyNotFound
	case errors.Is(e, badger.ErrEmptyKey):
		return store.ErrEmptyKey
	case errors.Is(e, badger.ErrConflict):
		return store.ErrConflict
	case errors.Is(e, badger.ErrReadOnlyTxn):
		return store.ErrReadOnlyTxn
	case errors.Is(e, badger.ErrDiscardedTxn):
		return store.ErrDiscardedTxn
	default:
		return store.NewBackendError(e)
	}
}

type config struct {
	opts badger.Options
	log  *slog.Logger
}

// Option configures Open.
type Option func(*config)

// WithLogger routes lifecycle and Badger's own messages to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithInMemory keeps all data in memory. The directory is ignored.
func WithInMemory() Option {
	return func(c *config) { c.opts = c.opts.WithInMemory(true).WithDir("").WithValueDir("") }
}

// WithSyncWrites makes every commit wait for an fsync.
func WithSyncWrites(sync bool) Option {
	return func(c *config) { c.opts = c.opts.WithSyncWrites(sync) }
}

// WithOptions applies arbitrary changes to the Badger options.
func WithOptions(fn func(badger.Options) badger.Options) Option {
	return func(c *config) { c.opts = fn(c.opts) }
}

// DB is a store.DB backed by Badger.
type DB struct {
	db       *badger.DB
	log      *slog.Logger
	inMemory bool
}

var (
	_ store.DB      = (*DB)(nil)
	_ store.Storage = (*DB)(nil)
)

// Open opens or creates a Badger database in dir.
func Open(dir string, options ...Option) (*DB, error) {
	c := &config{opts: badger.DefaultOptions(dir)}
	for _, o := range options {
		o(c)
	}
	c.log = logging.OrNop(c.log)
	c.opts = c.opts.WithLogger(slogAdapter{c.log.With("component", "badger")})

	db, err := badger.Open(c.opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger: %s", dir)
	}
	c.log.Info("badger store opened", "dir", dir, "in_memory", c.opts.InMemory)
	return &DB{db: db, log: c.log, inMemory: c.opts.InMemory}, nil
}

func (db *DB) Close() error {
	db.log.Info("badger store closing")
	return translateError(db.db.Close())
}

func (db *DB) View(f func(store.Txn) error) error {
	return db.db.View(func(txn *badger.Txn) error {
		return f(&Txn{txn: txn})
	})
}

func (db *DB) Update(f func(store.Txn) error) error {
	err := db.db.Update(func(txn *badger.Txn) error {
		return f(&Txn{txn: txn, writable: true})
	})
	if errors.Is(err, badger.ErrConflict) {
		return store.ErrConflict
	}
	return err
}

// Compact runs value log garbage collection until nothing is rewritten.
func (db *DB) Compact() error {
	if db.inMemory {
		return nil
	}
	for {
		err := db.db.RunValueLogGC(gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return translateError(err)
		}
		db.log.Debug("value log rewritten")
	}
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

// RangeRaw scans in a read transaction that lives until the iterator is
// closed.
func (db *DB) RangeRaw(low, high store.Bound, order store.Order) (store.RawIterator, error) {
	if store.IsEmptyRange(low, high) {
		return store.Empty(), nil
	}
	txn := db.db.NewTransaction(false)
	c := newCursor(txn, order)
	c.discard = txn.Discard
	return store.NewIterator(c, low, high, order), nil
}

// Txn adapts a Badger transaction.
type Txn struct {
	txn      *badger.Txn
	writable bool
}

func (t *Txn) Writable() bool { return t.writable }

func (t *Txn) GetRaw(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err != nil {
		return nil, translateError(err)
	}
	v, err := item.ValueCopy(nil)
	return v, translateError(err)
}

// SetRaw copies key and value; Badger keeps references until commit.
func (t *Txn) SetRaw(key, value []byte) error {
	k := append([]byte(nil), key...)
	v := append([]byte{}, value...)
	return translateError(t.txn.Set(k, v))
}

func (t *Txn) DeleteRaw(key []byte) error {
	return translateError(t.txn.Delete(append([]byte(nil), key...)))
}

func (t *Txn) RangeRaw(low, high store.Bound, order store.Order) (store.RawIterator, error) {
	if store.IsEmptyRange(low, high) {
		return store.Empty(), nil
	}
	return store.NewIterator(newCursor(t.txn, order), low, high, order), nil
}

type cursor struct {
	*badger.Iterator
	discard func()
}

func newCursor(txn *badger.Txn, order store.Order) *cursor {
	opt := badger.DefaultIteratorOptions
	opt.PrefetchSize = prefetchSize
	opt.Reverse = order == store.Descending
	return &cursor{Iterator: txn.NewIterator(opt)}
}

func (c *cursor) Key() []byte { return c.Item().Key() }

func (c *cursor) Value() ([]byte, error) {
	v, err := c.Item().ValueCopy(nil)
	return v, translateError(err)
}

func (c *cursor) Close() {
	c.Iterator.Close()
	if c.discard != nil {
		c.discard()
		c.discard = nil
	}
}

// slogAdapter satisfies badger.Logger.
type slogAdapter struct {
	l *slog.Logger
}

func format(f string, args []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(f, args...))
}

func (a slogAdapter) Errorf(f string, args ...interface{})   { a.l.Error(format(f, args)) }
func (a slogAdapter) Warningf(f string, args ...interface{}) { a.l.Warn(format(f, args)) }
func (a slogAdapter) Infof(f string, args ...interface{})    { a.l.Debug(format(f, args)) }
func (a slogAdapter) Debugf(f string, args ...interface{})   { a.l.Debug(format(f, args)) }
