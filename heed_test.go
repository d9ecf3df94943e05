package heed_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	heed "github.com/meilisearch/heed-sub001"
	"github.com/meilisearch/heed-sub001/codec"
)

func openTestEnv(t *testing.T, mapSize datasize.ByteSize) *heed.Env {
	t.Helper()
	dir := t.TempDir()
	opts := heed.NewOptions().WithMapSize(mapSize).WithMaxDBs(8)
	env, err := heed.Open(dir, *opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

// codecOf adapts any codec.Codec[T] value (including the package's
// package-level built-in values like codec.I64) into a usable Codec[T].
func codecOf[T any](c codec.Codec[T]) codec.Codec[T] { return c }

// scenario 1 (spec.md §8): clear mid-transaction, re-insert, observe
// within the same transaction and again from a fresh read transaction.
func TestScenarioClearThenReinsertVisibleAcrossTxns(t *testing.T) {
	env := openTestEnv(t, 10*datasize.MB)

	wtxn, err := env.WriteTxn()
	require.NoError(t, err)
	db, err := heed.CreateDatabase[string, string](env, wtxn, "a", heed.DatabaseOptions{Flags: heed.Default}, codecOf[string](codec.Str{}), codecOf[string](codec.Str{}))
	require.NoError(t, err)

	require.NoError(t, db.Put(wtxn, "I am here", "to test things"))
	require.NoError(t, db.Put(wtxn, "I am here too", "for the same purpose"))
	require.NoError(t, wtxn.Commit())

	wtxn, err = env.WriteTxn()
	require.NoError(t, err)
	require.NoError(t, db.Clear(wtxn))
	require.NoError(t, db.Put(wtxn, "And I come back", "to test things"))

	it, err := db.Iter(wtxn.AsRoTxn())
	require.NoError(t, err)
	var gotKeys, gotVals []string
	for {
		k, v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		gotKeys = append(gotKeys, k)
		gotVals = append(gotVals, v)
	}
	it.Close()
	require.Equal(t, []string{"And I come back"}, gotKeys)
	require.Equal(t, []string{"to test things"}, gotVals)
	require.NoError(t, wtxn.Commit())

	rtxn, err := env.ReadTxn()
	require.NoError(t, err)
	defer rtxn.Abort()
	it, err = db.Iter(rtxn)
	require.NoError(t, err)
	defer it.Close()
	k, v, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "And I come back", k)
	require.Equal(t, "to test things", v)
	_, _, ok, err = it.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

// scenario 2 (spec.md §8): big-endian integer keys, range, delete_range.
func TestScenarioIntegerKeysRangeAndDeleteRange(t *testing.T) {
	env := openTestEnv(t, 10*datasize.MB)

	i64 := codecOf[int64](codec.I64)
	unit := codecOf[struct{}](codec.Unit{})

	wtxn, err := env.WriteTxn()
	require.NoError(t, err)
	db, err := heed.CreateDatabase[int64, struct{}](env, wtxn, "ints", heed.DatabaseOptions{Flags: heed.IntegerKey}, i64, unit)
	require.NoError(t, err)

	for _, k := range []int64{0, 68, 35, 42} {
		require.NoError(t, db.Put(wtxn, k, struct{}{}))
	}
	require.NoError(t, wtxn.Commit())

	rtxn, err := env.ReadTxn()
	require.NoError(t, err)
	it, err := db.Iter(rtxn)
	require.NoError(t, err)
	var keys []int64
	for {
		k, _, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, k)
	}
	it.Close()
	require.Equal(t, []int64{0, 35, 42, 68}, keys)

	b35, _ := codec.I64.Encode(35)
	b42, _ := codec.I64.Encode(42)

	rangeIt, err := db.Range(rtxn, heed.Range{Lower: heed.Inclusive(b35), Upper: heed.Inclusive(b42)})
	require.NoError(t, err)
	var rangeKeys []int64
	for {
		k, _, ok, err := rangeIt.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		rangeKeys = append(rangeKeys, k)
	}
	rangeIt.Close()
	require.Equal(t, []int64{35, 42}, rangeKeys)
	rtxn.Abort()

	wtxn, err = env.WriteTxn()
	require.NoError(t, err)
	n, err := db.DeleteRange(wtxn, heed.Range{Lower: heed.Inclusive(b35), Upper: heed.Inclusive(b42)})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, wtxn.Commit())

	rtxn, err = env.ReadTxn()
	require.NoError(t, err)
	defer rtxn.Abort()
	it, err = db.Iter(rtxn)
	require.NoError(t, err)
	defer it.Close()
	keys = nil
	for {
		k, _, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		keys = append(keys, k)
	}
	require.Equal(t, []int64{0, 68}, keys)
}

// scenario 3 (spec.md §8): a custom key comparator parsing string keys
// as signed decimal integers orders them numerically, not
// lexicographically.
func TestScenarioCustomComparatorOrdersKeysNumerically(t *testing.T) {
	env := openTestEnv(t, 10*datasize.MB)

	str := codecOf[string](codec.Str{})
	byDecimalValue := func(a, b []byte) int {
		av, aerr := strconv.Atoi(string(a))
		bv, berr := strconv.Atoi(string(b))
		if aerr != nil || berr != nil {
			panic("non-numeric key")
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	}

	wtxn, err := env.WriteTxn()
	require.NoError(t, err)
	db, err := heed.CreateDatabase[string, string](env, wtxn, "decimal",
		heed.DatabaseOptions{Flags: heed.Default, KeyCompare: byDecimalValue}, str, str)
	require.NoError(t, err)

	for _, k := range []string{"-100000", "-10000", "-1000", "-100", "100"} {
		require.NoError(t, db.Put(wtxn, k, k))
	}
	require.NoError(t, wtxn.Commit())

	rtxn, err := env.ReadTxn()
	require.NoError(t, err)
	defer rtxn.Abort()
	it, err := db.Iter(rtxn)
	require.NoError(t, err)
	defer it.Close()

	var got []string
	for {
		k, _, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, k)
	}
	require.Equal(t, []string{"-100000", "-10000", "-1000", "-100", "100"}, got)
}

// scenario 4 (spec.md §8): a duplicate-sort sub-database with a custom
// descending comparator over u128 duplicate values.
func TestScenarioCustomDupComparatorOrdersValuesDescending(t *testing.T) {
	env := openTestEnv(t, 10*datasize.MB)

	str := codecOf[string](codec.Str{})
	u128 := codecOf[uint256.Int](codec.U128{})
	descendingU128 := func(a, b []byte) int {
		return -bytes.Compare(a, b)
	}

	wtxn, err := env.WriteTxn()
	require.NoError(t, err)
	db, err := heed.CreateDatabase[string, uint256.Int](env, wtxn, "dup-desc",
		heed.DatabaseOptions{Flags: heed.DupSort, DupCompare: descendingU128}, str, u128)
	require.NoError(t, err)

	type kv struct {
		k string
		v uint64
	}
	for _, e := range []kv{{"0", 0}, {"1", 1}, {"1", 2}, {"1", 3}, {"2", 4}, {"1", 5}} {
		require.NoError(t, db.Put(wtxn, e.k, *uint256.NewInt(e.v)))
	}
	require.NoError(t, wtxn.Commit())

	rtxn, err := env.ReadTxn()
	require.NoError(t, err)
	defer rtxn.Abort()
	it, err := db.Iter(rtxn)
	require.NoError(t, err)
	defer it.Close()

	var got []kv
	for {
		k, v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, kv{k, v.Uint64()})
	}
	require.Equal(t, []kv{{"0", 0}, {"1", 5}, {"1", 3}, {"1", 2}, {"1", 1}, {"2", 4}}, got)
}

// scenario 5 (spec.md §8): nested write transactions promote on commit
// and discard on abort.
func TestScenarioNestedWriteTransactions(t *testing.T) {
	env := openTestEnv(t, 10*datasize.MB)

	str := codecOf[string](codec.Str{})
	raw := codecOf[[]byte](codec.Bytes{})

	parent, err := env.WriteTxn()
	require.NoError(t, err)
	db, err := heed.CreateDatabase[string, []byte](env, parent, "nested", heed.DatabaseOptions{Flags: heed.Default}, str, raw)
	require.NoError(t, err)
	require.NoError(t, db.Put(parent, "hello", []byte{2, 3}))

	child, err := env.NestedWriteTxn(parent)
	require.NoError(t, err)
	require.NoError(t, db.Put(child, "what", []byte{4, 5}))
	child.Abort()

	_, ok, err := db.Get(parent.AsRoTxn(), "what")
	require.NoError(t, err)
	require.False(t, ok)

	child, err = env.NestedWriteTxn(parent)
	require.NoError(t, err)
	require.NoError(t, db.Put(child, "humm", []byte{6, 7}))
	require.NoError(t, child.Commit())

	v, ok, err := db.Get(parent.AsRoTxn(), "humm")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{6, 7}, v)

	require.NoError(t, parent.Commit())

	rtxn, err := env.ReadTxn()
	require.NoError(t, err)
	defer rtxn.Abort()
	_, ok, err = db.Get(rtxn, "hello")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = db.Get(rtxn, "humm")
	require.NoError(t, err)
	require.True(t, ok)
}

// scenario 10 (spec.md §8): two opens of the same path with the same
// options share the live environment; mismatched options are rejected.
func TestRegistrySharesOnMatchingOptionsRejectsOnMismatch(t *testing.T) {
	dir := t.TempDir()
	opts1 := *heed.NewOptions().WithMapSize(16 * datasize.MB).WithMaxDBs(4)

	env1, err := heed.Open(dir, opts1)
	require.NoError(t, err)
	defer env1.Close()

	env1b, err := heed.Open(dir, opts1)
	require.NoError(t, err)
	defer env1b.Close()

	opts2 := *heed.NewOptions().WithMapSize(32 * datasize.MB).WithMaxDBs(4)
	_, err = heed.Open(dir, opts2)
	require.Error(t, err)
}

func TestOptionsValidateRejectsNonPageMultiple(t *testing.T) {
	opts := heed.NewOptions().WithMapSize(datasize.ByteSize(1))
	require.Error(t, opts.Validate())
}
