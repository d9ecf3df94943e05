package heed

import (
	"github.com/erigontech/mdbx-go/mdbx"
)

// DupMode selects how a cursor move crosses duplicate-value boundaries
// for a key in a duplicate-sort sub-database (spec.md §4.5).
type DupMode int

const (
	// Any moves freely across duplicate boundaries, treating every
	// (key, value) pair as one logical entry.
	Any DupMode = iota
	// NoDup skips over duplicates of the current key, landing on the
	// next/previous distinct key.
	NoDup
	// Dup stays within the duplicates of the current key.
	Dup
)

// entry is a single (key, value) byte pair returned by a cursor
// position, valid for the lifetime described in spec.md §3 ("Borrowed
// record").
type entry struct {
	key []byte
	val []byte
}

// rawCursor is the low-level positional pointer over one sub-database
// within one transaction (spec.md §4.5). It is not exported directly —
// callers get a typed iterator or Database method, both built on it.
type rawCursor struct {
	txn    *mdbx.Txn
	cursor *mdbx.Cursor
	dbi    mdbx.DBI
	dup    bool // sub-database has DupSort set
}

func openRawCursor(txn *mdbx.Txn, dbi mdbx.DBI, dup bool) (*rawCursor, error) {
	c, err := txn.OpenCursor(dbi)
	if err != nil {
		return nil, wrapEngineErr("open cursor", err)
	}
	return &rawCursor{txn: txn, cursor: c, dbi: dbi, dup: dup}, nil
}

func (c *rawCursor) Close() {
	c.cursor.Close()
}

func (c *rawCursor) get(op mdbx.CursorOp) (entry, bool, error) {
	k, v, err := c.cursor.Get(nil, nil, op)
	if err != nil {
		if isNotFound(wrapEngineErr("cursor get", err)) {
			return entry{}, false, nil
		}
		return entry{}, false, wrapEngineErr("cursor get", err)
	}
	return entry{key: k, val: v}, true, nil
}

func (c *rawCursor) getKey(op mdbx.CursorOp, key []byte) (entry, bool, error) {
	k, v, err := c.cursor.Get(key, nil, op)
	if err != nil {
		if isNotFound(wrapEngineErr("cursor get", err)) {
			return entry{}, false, nil
		}
		return entry{}, false, wrapEngineErr("cursor get", err)
	}
	return entry{key: k, val: v}, true, nil
}

func (c *rawCursor) First() (entry, bool, error)    { return c.get(mdbx.First) }
func (c *rawCursor) Last() (entry, bool, error)     { return c.get(mdbx.Last) }
func (c *rawCursor) Current() (entry, bool, error)  { return c.get(mdbx.GetCurrent) }
func (c *rawCursor) FirstDup() (entry, bool, error) { return c.get(mdbx.FirstDup) }
func (c *rawCursor) LastDup() (entry, bool, error)  { return c.get(mdbx.LastDup) }

// Next advances according to mode: Any moves to the next (key, value)
// pair regardless of duplicates; NoDup skips to the next distinct key;
// Dup stays within the current key's duplicates.
func (c *rawCursor) Next(mode DupMode) (entry, bool, error) {
	switch mode {
	case NoDup:
		return c.get(mdbx.NextNoDup)
	case Dup:
		return c.get(mdbx.NextDup)
	default:
		return c.get(mdbx.Next)
	}
}

func (c *rawCursor) Prev(mode DupMode) (entry, bool, error) {
	switch mode {
	case NoDup:
		return c.get(mdbx.PrevNoDup)
	case Dup:
		return c.get(mdbx.PrevDup)
	default:
		return c.get(mdbx.Prev)
	}
}

// MoveOnKey positions exactly on key, reporting false if absent.
func (c *rawCursor) MoveOnKey(key []byte) (entry, bool, error) {
	return c.getKey(mdbx.Set, key)
}

// MoveOnKeyGreaterThanOrEqualTo positions on the first key >= key.
func (c *rawCursor) MoveOnKeyGreaterThanOrEqualTo(key []byte) (entry, bool, error) {
	return c.getKey(mdbx.SetRange, key)
}

// DeleteCurrent removes the entry the cursor is positioned on.
func (c *rawCursor) DeleteCurrent() error {
	if err := c.cursor.Del(0); err != nil {
		return wrapEngineErr("delete current", err)
	}
	return nil
}

// PutCurrent overwrites the value at the current key; key must equal
// the cursor's current key (spec.md §4.5).
func (c *rawCursor) PutCurrent(key, val []byte) error {
	if err := c.cursor.Put(key, val, mdbx.Current); err != nil {
		return wrapEngineErr("put current", err)
	}
	return nil
}

// PutCurrentReserved allocates size bytes in place at the current
// position and hands the caller a ReservedSpace to fill.
func (c *rawCursor) PutCurrentReserved(key []byte, size int, fill func(*ReservedSpace) error) error {
	buf, err := c.cursor.PutReserve(key, size, mdbx.Current|mdbx.Reserve)
	if err != nil {
		return wrapEngineErr("put current reserved", err)
	}
	rs := newReservedSpace(buf)
	if err := fill(rs); err != nil {
		return err
	}
	if !rs.complete() {
		return newErr(CodeReservedSpaceUnderwritten, "fill callback did not write the full reservation")
	}
	return nil
}

// PutCurrentWithFlags is a cursor-scoped put with explicit flags.
func (c *rawCursor) PutCurrentWithFlags(flags PutFlags, key, val []byte) error {
	if err := c.cursor.Put(key, val, flags.toEngine()|mdbx.Current); err != nil {
		return wrapEngineErr("put current with flags", err)
	}
	return nil
}

// Append inserts (key, val), requiring key to sort strictly after any
// existing key; fails with key-exists otherwise (spec.md §4.5).
func (c *rawCursor) Append(key, val []byte) error {
	if err := c.cursor.Put(key, val, mdbx.Append); err != nil {
		return wrapEngineErr("append", err)
	}
	return nil
}

// Put is the general-purpose cursor put used by Database.Put when it
// doesn't already have a positioned cursor to reuse.
func (c *rawCursor) Put(key, val []byte, flags PutFlags) error {
	if err := c.cursor.Put(key, val, flags.toEngine()); err != nil {
		return wrapEngineErr("put", err)
	}
	return nil
}

// PutReserved is Put's reserved-space counterpart.
func (c *rawCursor) PutReserved(key []byte, size int, flags PutFlags, fill func(*ReservedSpace) error) error {
	buf, err := c.cursor.PutReserve(key, size, flags.toEngine()|mdbx.Reserve)
	if err != nil {
		return wrapEngineErr("put reserved", err)
	}
	rs := newReservedSpace(buf)
	if err := fill(rs); err != nil {
		return err
	}
	if !rs.complete() {
		return newErr(CodeReservedSpaceUnderwritten, "fill callback did not write the full reservation")
	}
	return nil
}
