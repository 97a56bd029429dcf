package store

// Reader reads single raw entries.
type Reader interface {
	// GetRaw returns ErrKeyNotFound when key is absent.
	GetRaw(key []byte) ([]byte, error)
}

// Writer writes and removes single raw entries.
type Writer interface {
	SetRaw(key, value []byte) error
	// DeleteRaw is a no-op for absent keys.
	DeleteRaw(key []byte) error
}

// Ranger scans raw entries in key order.
type Ranger interface {
	// RangeRaw yields exactly the entries within low and high, strictly
	// sorted in the requested order.
	RangeRaw(low, high Bound, order Order) (RawIterator, error)
}

// Storage is the flat sorted byte store that containers are built on.
type Storage interface {
	Reader
	Writer
	Ranger
}

// RawIterator walks raw entries. Key and Value are valid until the next call
// to Next. Close releases backend resources and may be called more than once.
type RawIterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// Txn is Storage scoped to one backend transaction.
type Txn interface {
	Storage
	Writable() bool
}

// DB hands out transactions. Update commits when fn returns nil and rolls
// back otherwise.
type DB interface {
	View(fn func(Txn) error) error
	Update(fn func(Txn) error) error
	Close() error
}

// Cursor is the ordered cursor a backend adapts to for NewIterator. A cursor
// is opened in one direction: in ascending mode Seek finds the first key at
// or after target, in descending mode the last key at or before it.
type Cursor interface {
	Seek(target []byte)
	Rewind()
	Next()
	Valid() bool
	Key() []byte
	Value() ([]byte, error)
	Close()
}
