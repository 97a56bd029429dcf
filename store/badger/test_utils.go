package badger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AmitPr/libkv/store"
)

// RunBadgerTest opens a Badger database in a temporary directory and runs
// test on it.
func RunBadgerTest(t *testing.T, opts []Option, test func(t *testing.T, db store.DB)) {
	db := OpenTestDB(t, opts...)
	test(t, db)
}

// OpenTestDB opens a Badger database in a temporary directory that is
// removed when t finishes.
func OpenTestDB(t testing.TB, opts ...Option) *DB {
	dir := t.TempDir()
	db, err := Open(dir, append([]Option{WithSyncWrites(false)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
