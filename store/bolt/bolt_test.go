package bolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AmitPr/libkv/store"
)

// RunBoltTest opens a bolt file in a temporary directory and runs test on it.
func RunBoltTest(t *testing.T, test func(t *testing.T, db store.DB)) {
	test(t, openTestDB(t))
}

func openTestDB(t *testing.T, opts ...Option) *DB {
	path := filepath.Join(t.TempDir(), "data", "libkv.db")
	db, err := Open(path, append([]Option{WithNoSync(true)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConformance(t *testing.T) {
	store.RunAll(t, func(t *testing.T) store.DB { return openTestDB(t) })
}

func TestIterator(t *testing.T) {
	RunBoltTest(t, store.RunTestIterator)
}

func TestSeparateBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	db, err := Open(path, WithBucket([]byte("one")), WithTimeout(time.Second))
	require.NoError(t, err)
	require.NoError(t, db.SetRaw([]byte("k"), []byte("1")))
	require.NoError(t, db.Close())

	db, err = Open(path, WithBucket([]byte("two")))
	require.NoError(t, err)
	_, err = db.GetRaw([]byte("k"))
	require.ErrorIs(t, err, store.ErrKeyNotFound)
	require.NoError(t, db.Close())

	db, err = Open(path, WithBucket([]byte("one")))
	require.NoError(t, err)
	defer db.Close()
	v, err := db.GetRaw([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, "1", string(v))
}

func TestDescendingSeekBetweenKeys(t *testing.T) {
	db := openTestDB(t)
	for _, k := range []string{"b", "d", "f"} {
		require.NoError(t, db.SetRaw([]byte(k), []byte(k)))
	}
	it, err := db.RangeRaw(store.Unbound(), store.Include([]byte("e")), store.Descending)
	require.NoError(t, err)
	keys, _, err := store.Collect(it)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("d"), []byte("b")}, keys)

	it, err = db.RangeRaw(store.Unbound(), store.Exclude([]byte("z")), store.Descending)
	require.NoError(t, err)
	keys, _, err = store.Collect(it)
	require.NoError(t, err)
	require.Len(t, keys, 3)
}

func TestClosed(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "c.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	err = db.View(func(store.Txn) error { return nil })
	require.ErrorIs(t, err, store.ErrClosed)
}
