package heed

import "github.com/erigontech/mdbx-go/mdbx"

// DatabaseFlags configures a sub-database's physical layout. The bit
// layout mirrors the teacher's kv.TableFlags (erigon-lib/kv/tables.go),
// renamed and trimmed to the flags the engine actually supports; it is
// translated to mdbx's own flag words at DBI-open time rather than
// passed through numerically, since this wrapper targets a family of
// engines and must not assume the bit positions line up.
type DatabaseFlags uint

const (
	Default    DatabaseFlags = 0x00
	ReverseKey DatabaseFlags = 0x02
	DupSort    DatabaseFlags = 0x04
	IntegerKey DatabaseFlags = 0x08
	DupFixed   DatabaseFlags = 0x10
	IntegerDup DatabaseFlags = 0x20
	ReverseDup DatabaseFlags = 0x40
)

func (f DatabaseFlags) toEngine() uint {
	var out uint
	if f&ReverseKey != 0 {
		out |= mdbx.ReverseKey
	}
	if f&DupSort != 0 {
		out |= mdbx.DupSort
	}
	if f&IntegerKey != 0 {
		out |= mdbx.IntegerKey
	}
	if f&DupFixed != 0 {
		out |= mdbx.DupFixed
	}
	if f&IntegerDup != 0 {
		out |= mdbx.IntegerDup
	}
	if f&ReverseDup != 0 {
		out |= mdbx.ReverseDup
	}
	return out
}

// HasDupSort reports whether a sub-database configured with f allows
// multiple values per key (duplicate-sort).
func (f DatabaseFlags) HasDupSort() bool { return f&DupSort != 0 }

// EnvFlags configures environment-open-time behavior. Named after the
// spec's external-interface flag list (section 6); NoTLS and NoLock are
// LMDB-only concepts the underlying MDBX engine does not support safely
// and are rejected at Options.Validate time rather than silently ignored.
type EnvFlags uint

const (
	FlagNoSubdir EnvFlags = 1 << iota
	FlagNoSync
	FlagReadOnly
	FlagNoMetaSync
	FlagWriteMap
	FlagMapAsync
	FlagNoTLS
	FlagNoLock
	FlagNoReadahead
	FlagNoMemInit
	// FlagPrevSnapshot requests the prior committed snapshot instead of
	// the latest one, carried over from heed3's PREV_SNAPSHOT extension
	// (see original_source/examples/prev-snapshot.rs); SPEC_FULL.md §3.
	FlagPrevSnapshot
)

// unsupported reports the subset of f this engine binding cannot honor.
func (f EnvFlags) unsupported() EnvFlags {
	return f & (FlagNoTLS | FlagNoLock)
}

func (f EnvFlags) toEngine() uint {
	var out uint
	if f&FlagNoSubdir != 0 {
		out |= mdbx.NoSubdir
	}
	if f&FlagNoSync != 0 {
		out |= mdbx.SafeNoSync
	}
	if f&FlagReadOnly != 0 {
		out |= mdbx.Readonly
	}
	if f&FlagNoMetaSync != 0 {
		out |= mdbx.NoMetaSync
	}
	if f&FlagWriteMap != 0 {
		out |= mdbx.WriteMap
	}
	if f&FlagMapAsync != 0 {
		out |= mdbx.UtterlyNoSync
	}
	if f&FlagNoReadahead != 0 {
		out |= mdbx.NoReadahead
	}
	if f&FlagNoMemInit != 0 {
		out |= mdbx.NoMemInit
	}
	if f&FlagPrevSnapshot != 0 {
		out |= mdbx.PrevSnapshot
	}
	return out
}

// PutFlags selects the overwrite/append/reserve semantics of a single
// put. Mirrors spec.md §4.3's put_with_flags contract.
type PutFlags uint

const (
	PutUpsert      PutFlags = 0x00 // default: overwrite
	PutNoOverwrite PutFlags = 0x01
	PutNoDupData   PutFlags = 0x02
	PutCurrent     PutFlags = 0x04
	PutReserve     PutFlags = 0x08
	PutAppend      PutFlags = 0x10
	PutAppendDup   PutFlags = 0x20
)

func (f PutFlags) toEngine() uint {
	var out uint
	if f&PutNoOverwrite != 0 {
		out |= mdbx.NoOverwrite
	}
	if f&PutNoDupData != 0 {
		out |= mdbx.NoDupData
	}
	if f&PutCurrent != 0 {
		out |= mdbx.Current
	}
	if f&PutReserve != 0 {
		out |= mdbx.Reserve
	}
	if f&PutAppend != 0 {
		out |= mdbx.Append
	}
	if f&PutAppendDup != 0 {
		out |= mdbx.AppendDup
	}
	return out
}

// TLSMode selects whether read transactions pin their reader-lock-table
// slot to the calling OS thread (Pinned, the LMDB default) or are free
// to move between threads (Portable, LMDB's MDB_NOTLS). One mode governs
// an entire environment; a second Open of the same path with a different
// TLSMode is rejected by the registry with ErrEnvAlreadyOpened.
type TLSMode int

const (
	// Pinned ties each read transaction's reader slot to the OS thread
	// that began it; transactions cannot be shared across goroutines
	// that might be scheduled onto different threads.
	Pinned TLSMode = iota
	// Portable read transactions may be used from any thread, at the
	// cost of one extra reader-table indirection per transaction.
	Portable
)
