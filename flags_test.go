package heed

import (
	"testing"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/stretchr/testify/require"
)

func TestDatabaseFlagsBitsAreDistinct(t *testing.T) {
	all := []DatabaseFlags{ReverseKey, DupSort, IntegerKey, DupFixed, IntegerDup, ReverseDup}
	var seen DatabaseFlags
	for _, f := range all {
		require.Zero(t, seen&f, "flag %v overlaps a previously seen bit", f)
		seen |= f
	}
}

func TestDatabaseFlagsToEngineTranslatesEachBit(t *testing.T) {
	got := (ReverseKey | DupSort | IntegerKey).toEngine()
	require.Equal(t, mdbx.ReverseKey|mdbx.DupSort|mdbx.IntegerKey, got)
}

func TestHasDupSort(t *testing.T) {
	require.True(t, DupSort.HasDupSort())
	require.True(t, (DupSort | ReverseKey).HasDupSort())
	require.False(t, Default.HasDupSort())
}

func TestEnvFlagsUnsupportedRejectsNoTLSAndNoLock(t *testing.T) {
	require.NotZero(t, FlagNoTLS.unsupported())
	require.NotZero(t, FlagNoLock.unsupported())
	require.Zero(t, FlagWriteMap.unsupported())
}

func TestPutFlagsBitsAreDistinct(t *testing.T) {
	all := []PutFlags{PutNoOverwrite, PutNoDupData, PutCurrent, PutReserve, PutAppend, PutAppendDup}
	var seen PutFlags
	for _, f := range all {
		require.Zero(t, seen&f)
		seen |= f
	}
}
