package store

import (
	"bytes"
)

// Prefixed scopes s to the keyspace under domain. Keys passed in and keys
// yielded by RangeRaw are relative to domain.
func Prefixed(s Storage, domain []byte) Storage {
	return &prefixed{s: s, domain: append([]byte(nil), domain...)}
}

type prefixed struct {
	s      Storage
	domain []byte
}

func (p *prefixed) join(key []byte) []byte {
	return append(append(make([]byte, 0, len(p.domain)+len(key)), p.domain...), key...)
}

func (p *prefixed) GetRaw(key []byte) ([]byte, error) {
	return p.s.GetRaw(p.join(key))
}

func (p *prefixed) SetRaw(key, value []byte) error {
	return p.s.SetRaw(p.join(key), value)
}

func (p *prefixed) DeleteRaw(key []byte) error {
	return p.s.DeleteRaw(p.join(key))
}

func (p *prefixed) RangeRaw(low, high Bound, order Order) (RawIterator, error) {
	dlow, dhigh := PrefixBounds(p.domain)
	if low.Kind != Unbounded {
		dlow = Bound{Kind: low.Kind, Key: p.join(low.Key)}
	}
	if high.Kind != Unbounded {
		dhigh = Bound{Kind: high.Kind, Key: p.join(high.Key)}
	}
	it, err := p.s.RangeRaw(dlow, dhigh, order)
	if err != nil {
		return nil, err
	}
	return &domainIterator{RawIterator: it, domain: p.domain}, nil
}

// TrimDomain strips domain from a raw key.
func TrimDomain(domain, key []byte) []byte {
	return bytes.TrimPrefix(key, domain)
}

type domainIterator struct {
	RawIterator
	domain []byte
}

func (it *domainIterator) Key() []byte {
	return TrimDomain(it.domain, it.RawIterator.Key())
}

// PrefixedDB scopes every transaction of db to domain.
func PrefixedDB(db DB, domain []byte) DB {
	return &prefixedDB{db: db, domain: append([]byte(nil), domain...)}
}

type prefixedDB struct {
	db     DB
	domain []byte
}

type prefixedTxn struct {
	Storage
	txn Txn
}

func (t *prefixedTxn) Writable() bool { return t.txn.Writable() }

func (db *prefixedDB) wrap(fn func(Txn) error) func(Txn) error {
	return func(txn Txn) error {
		return fn(&prefixedTxn{Storage: Prefixed(txn, db.domain), txn: txn})
	}
}

func (db *prefixedDB) View(fn func(Txn) error) error   { return db.db.View(db.wrap(fn)) }
func (db *prefixedDB) Update(fn func(Txn) error) error { return db.db.Update(db.wrap(fn)) }
func (db *prefixedDB) Close() error                    { return db.db.Close() }
