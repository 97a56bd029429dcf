package badger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AmitPr/libkv/store"
)

func TestConformance(t *testing.T) {
	store.RunAll(t, func(t *testing.T) store.DB { return OpenTestDB(t) })
}

func TestConformanceInMemory(t *testing.T) {
	store.RunAll(t, func(t *testing.T) store.DB { return OpenTestDB(t, WithInMemory()) })
}

func TestUpdateAndView(t *testing.T) {
	RunBadgerTest(t, nil, store.RunTestUpdateView)
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		require.NoError(t, db.SetRaw([]byte(fmt.Sprintf("k%02d", i)), []byte(fmt.Sprintf("v%d", i))))
	}
	require.NoError(t, db.Compact())
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.GetRaw([]byte("k07"))
	require.NoError(t, err)
	require.Equal(t, "v7", string(v))

	it, err := db.RangeRaw(store.Unbound(), store.Include([]byte("k18")), store.Descending)
	require.NoError(t, err)
	keys, _, err := store.Collect(it)
	require.NoError(t, err)
	require.Len(t, keys, 19)
	require.Equal(t, "k18", string(keys[0]))
}

func TestTranslateError(t *testing.T) {
	db := OpenTestDB(t, WithInMemory())
	_, err := db.GetRaw([]byte("missing"))
	require.ErrorIs(t, err, store.ErrKeyNotFound)

	err = db.View(func(txn store.Txn) error {
		return txn.SetRaw([]byte("k"), []byte("v"))
	})
	require.ErrorIs(t, err, store.ErrReadOnlyTxn)
}
