package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AmitPr/libkv/store"
)

func open(t *testing.T) store.DB {
	db := New()
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConformance(t *testing.T) {
	store.RunAll(t, open)
}

func TestSnapshotIsolation(t *testing.T) {
	db := New()
	defer db.Close()
	require.NoError(t, db.SetRaw([]byte("k"), []byte("v1")))

	err := db.View(func(txn store.Txn) error {
		require.NoError(t, db.SetRaw([]byte("k"), []byte("v2")))
		v, err := txn.GetRaw([]byte("k"))
		require.NoError(t, err)
		require.Equal(t, "v1", string(v))
		return nil
	})
	require.NoError(t, err)

	v, err := db.GetRaw([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(v))
}

func TestWriteDuringScan(t *testing.T) {
	db := New()
	defer db.Close()
	for i := 0; i < 100; i++ {
		require.NoError(t, db.SetRaw([]byte(fmt.Sprintf("k%03d", i)), []byte("x")))
	}
	err := db.Update(func(txn store.Txn) error {
		it, err := txn.RangeRaw(store.Unbound(), store.Unbound(), store.Ascending)
		require.NoError(t, err)
		defer it.Close()
		n := 0
		for it.Next() {
			require.NoError(t, txn.DeleteRaw(it.Key()))
			n++
		}
		require.Equal(t, 100, n)
		return it.Err()
	})
	require.NoError(t, err)
	require.Equal(t, 0, db.Len())
}

func TestConcurrentUpdates(t *testing.T) {
	db := New()
	defer db.Close()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				require.NoError(t, db.SetRaw([]byte(fmt.Sprintf("w%d-%02d", w, i)), []byte("v")))
			}
		}(w)
	}
	wg.Wait()
	require.Equal(t, 400, db.Len())
}

func TestClosed(t *testing.T) {
	db := New()
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
	_, err := db.GetRaw([]byte("k"))
	require.ErrorIs(t, err, store.ErrClosed)
	require.ErrorIs(t, db.SetRaw([]byte("k"), nil), store.ErrClosed)
}
