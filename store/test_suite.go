package store

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Conformance tests shared by every backend. Each backend package runs them
// against a fresh DB.

func checkRange(t *testing.T, s Storage, low, high Bound, order Order, expected []string) {
	t.Helper()
	it, err := s.RangeRaw(low, high, order)
	require.NoError(t, err)
	keys, _, err := Collect(it)
	require.NoError(t, err)
	got := make([]string, 0, len(keys))
	for _, k := range keys {
		got = append(got, string(k))
	}
	require.Equal(t, expected, got, "range %s %s %s", low, high, order)
}

func checkValues(t *testing.T, it RawIterator, expected []string) {
	t.Helper()
	_, values, err := Collect(it)
	require.NoError(t, err)
	require.Len(t, values, len(expected))
	for i, v := range values {
		require.Equal(t, expected[i], string(v))
	}
}

func insertIteratorData(db DB) error {
	return db.Update(func(txn Txn) error {
		for _, kv := range [][2]string{
			{"aaaaaaa", "dontlook"},
			{"answer1", "42"},
			{"answer2", "43"},
			{"answer3", "44"},
			{"answer4", "45"},
			{"bbbbbbb", "dontlook"},
		} {
			if err := txn.SetRaw([]byte(kv[0]), []byte(kv[1])); err != nil {
				return err
			}
		}
		return nil
	})
}

func RunTestIterator(t *testing.T, db DB) {
	require.NoError(t, insertIteratorData(db))

	err := db.View(func(txn Txn) error {
		low, high := PrefixBounds([]byte("answer"))
		it, err := txn.RangeRaw(low, high, Ascending)
		require.NoError(t, err)
		checkValues(t, it, []string{"42", "43", "44", "45"})
		return nil
	})
	require.NoError(t, err)
}

func RunTestReverseIterator(t *testing.T, db DB) {
	require.NoError(t, insertIteratorData(db))

	err := db.View(func(txn Txn) error {
		low, high := PrefixBounds([]byte("answer"))
		it, err := txn.RangeRaw(low, high, Descending)
		require.NoError(t, err)
		checkValues(t, it, []string{"45", "44", "43", "42"})
		return nil
	})
	require.NoError(t, err)
}

func RunTestUpdateView(t *testing.T, db DB) {
	err := db.Update(func(txn Txn) error {
		require.True(t, txn.Writable())
		for i := 0; i < 10; i++ {
			err := txn.SetRaw([]byte(fmt.Sprintf("key%d", i)), []byte(fmt.Sprintf("val%d", i)))
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = db.View(func(txn Txn) error {
		require.False(t, txn.Writable())
		for i := 0; i < 10; i++ {
			k := []byte(fmt.Sprintf("key%d", i))
			val, err := txn.GetRaw(k)
			if err != nil {
				return err
			}
			expected := []byte(fmt.Sprintf("val%d", i))
			require.Equal(t, expected, val,
				"Invalid value for key %q. expected: %q, actual: %q",
				k, expected, val)
		}
		_, err := txn.GetRaw([]byte("key10"))
		require.ErrorIs(t, err, ErrKeyNotFound)
		return nil
	})
	require.NoError(t, err)
}

func RunTestDelete(t *testing.T, db DB) {
	err := db.Update(func(txn Txn) error {
		require.NoError(t, txn.SetRaw([]byte("a"), []byte("1")))
		require.NoError(t, txn.SetRaw([]byte("b"), []byte("2")))
		require.NoError(t, txn.DeleteRaw([]byte("a")))
		// Deleting an absent key is not an error.
		require.NoError(t, txn.DeleteRaw([]byte("zzz")))
		return nil
	})
	require.NoError(t, err)

	err = db.View(func(txn Txn) error {
		_, err := txn.GetRaw([]byte("a"))
		require.ErrorIs(t, err, ErrKeyNotFound)
		checkRange(t, txn, Unbound(), Unbound(), Ascending, []string{"b"})
		return nil
	})
	require.NoError(t, err)
}

func RunTestOverwrite(t *testing.T, db DB) {
	err := db.Update(func(txn Txn) error {
		require.NoError(t, txn.SetRaw([]byte("answer"), []byte("wrong")))
		require.NoError(t, txn.SetRaw([]byte("answer"), []byte("42")))
		v, err := txn.GetRaw([]byte("answer"))
		require.NoError(t, err)
		require.Equal(t, "42", string(v))
		return nil
	})
	require.NoError(t, err)
}

func RunTestBounds(t *testing.T, db DB) {
	err := db.Update(func(txn Txn) error {
		for _, k := range []string{"a", "b", "c", "d", "e"} {
			if err := txn.SetRaw([]byte(k), []byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	b := func(s string) []byte { return []byte(s) }
	cases := []struct {
		low, high Bound
		asc       []string
	}{
		{Unbound(), Unbound(), []string{"a", "b", "c", "d", "e"}},
		{Include(b("b")), Include(b("d")), []string{"b", "c", "d"}},
		{Exclude(b("b")), Include(b("d")), []string{"c", "d"}},
		{Include(b("b")), Exclude(b("d")), []string{"b", "c"}},
		{Exclude(b("b")), Exclude(b("d")), []string{"c"}},
		{Include(b("bb")), Unbound(), []string{"c", "d", "e"}},
		{Unbound(), Exclude(b("c")), []string{"a", "b"}},
		{Exclude(b("e")), Unbound(), []string{}},
		{Unbound(), Exclude(b("a")), []string{}},
		{Include(b("0")), Include(b("z")), []string{"a", "b", "c", "d", "e"}},
	}
	err = db.View(func(txn Txn) error {
		for _, tc := range cases {
			checkRange(t, txn, tc.low, tc.high, Ascending, tc.asc)
			desc := make([]string, 0, len(tc.asc))
			for i := len(tc.asc) - 1; i >= 0; i-- {
				desc = append(desc, tc.asc[i])
			}
			checkRange(t, txn, tc.low, tc.high, Descending, desc)
		}
		return nil
	})
	require.NoError(t, err)
}

func RunTestEmptyRange(t *testing.T, db DB) {
	err := db.Update(func(txn Txn) error {
		return txn.SetRaw([]byte("x"), []byte("1"))
	})
	require.NoError(t, err)

	err = db.View(func(txn Txn) error {
		x := []byte("x")
		checkRange(t, txn, Exclude(x), Exclude(x), Ascending, []string{})
		checkRange(t, txn, Include([]byte("y")), Include(x), Ascending, []string{})
		checkRange(t, txn, Include(x), Include(x), Descending, []string{"x"})
		return nil
	})
	require.NoError(t, err)
}

func RunTestRollback(t *testing.T, db DB) {
	failed := errors.New("abort")
	err := db.Update(func(txn Txn) error {
		require.NoError(t, txn.SetRaw([]byte("ghost"), []byte("boo")))
		return failed
	})
	require.ErrorIs(t, err, failed)

	err = db.View(func(txn Txn) error {
		_, err := txn.GetRaw([]byte("ghost"))
		require.ErrorIs(t, err, ErrKeyNotFound)
		return nil
	})
	require.NoError(t, err)
}

func RunTestReadOnly(t *testing.T, db DB) {
	err := db.View(func(txn Txn) error {
		require.ErrorIs(t, txn.SetRaw([]byte("k"), []byte("v")), ErrReadOnlyTxn)
		require.ErrorIs(t, txn.DeleteRaw([]byte("k")), ErrReadOnlyTxn)
		return nil
	})
	require.NoError(t, err)
}

func RunTestEmptyKey(t *testing.T, db DB) {
	err := db.Update(func(txn Txn) error {
		require.ErrorIs(t, txn.SetRaw(nil, []byte("v")), ErrEmptyKey)
		return nil
	})
	require.NoError(t, err)
}

func RunTestValueCopy(t *testing.T, db DB) {
	err := db.Update(func(txn Txn) error {
		v := []byte("b")
		require.NoError(t, txn.SetRaw([]byte("a"), v))
		v[0] = 'X'
		got, err := txn.GetRaw([]byte("a"))
		require.NoError(t, err)
		require.Equal(t, "b", string(got))
		got[0] = 'Y'
		return nil
	})
	require.NoError(t, err)

	err = db.View(func(txn Txn) error {
		got, err := txn.GetRaw([]byte("a"))
		require.NoError(t, err)
		require.Equal(t, "b", string(got))
		return nil
	})
	require.NoError(t, err)
}

func RunTestIteratorClose(t *testing.T, db DB) {
	require.NoError(t, insertIteratorData(db))

	err := db.View(func(txn Txn) error {
		it, err := txn.RangeRaw(Unbound(), Unbound(), Ascending)
		require.NoError(t, err)
		require.True(t, it.Next())
		require.Equal(t, "aaaaaaa", string(it.Key()))
		require.NoError(t, it.Close())
		require.False(t, it.Next())
		require.NoError(t, it.Close())
		return nil
	})
	require.NoError(t, err)
}

func RunTestPrefixed(t *testing.T, db DB) {
	users := PrefixedDB(db, []byte("users/"))
	other := PrefixedDB(db, []byte("other/"))

	err := users.Update(func(txn Txn) error {
		require.NoError(t, txn.SetRaw([]byte("ada"), []byte("1")))
		require.NoError(t, txn.SetRaw([]byte("bob"), []byte("2")))
		return nil
	})
	require.NoError(t, err)
	err = other.Update(func(txn Txn) error {
		return txn.SetRaw([]byte("ada"), []byte("x"))
	})
	require.NoError(t, err)

	err = users.View(func(txn Txn) error {
		v, err := txn.GetRaw([]byte("ada"))
		require.NoError(t, err)
		require.Equal(t, "1", string(v))
		checkRange(t, txn, Unbound(), Unbound(), Ascending, []string{"ada", "bob"})
		checkRange(t, txn, Exclude([]byte("ada")), Unbound(), Descending, []string{"bob"})
		return nil
	})
	require.NoError(t, err)

	err = db.View(func(txn Txn) error {
		checkRange(t, txn, Unbound(), Unbound(), Ascending, []string{"other/ada", "users/ada", "users/bob"})
		return nil
	})
	require.NoError(t, err)
}

// RunAll runs every conformance test against fresh databases from open.
func RunAll(t *testing.T, open func(t *testing.T) DB) {
	tests := map[string]func(*testing.T, DB){
		"Iterator":        RunTestIterator,
		"ReverseIterator": RunTestReverseIterator,
		"UpdateView":      RunTestUpdateView,
		"Delete":          RunTestDelete,
		"Overwrite":       RunTestOverwrite,
		"Bounds":          RunTestBounds,
		"EmptyRange":      RunTestEmptyRange,
		"Rollback":        RunTestRollback,
		"ReadOnly":        RunTestReadOnly,
		"EmptyKey":        RunTestEmptyKey,
		"ValueCopy":       RunTestValueCopy,
		"IteratorClose":   RunTestIteratorClose,
		"Prefixed":        RunTestPrefixed,
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test(t, open(t))
		})
	}
}
