package heed

import (
	"time"

	"github.com/erigontech/mdbx-go/mdbx"
)

type txnState int

const (
	txnActive txnState = iota
	txnCommitted
	txnAborted
)

// RoTxn is a read-only transaction: a consistent snapshot of the
// environment as of its begin point (spec.md §4.4). Its reader slot is
// pinned to the OS thread that opened it unless the environment was
// opened in Portable TLS mode.
type RoTxn struct {
	env   *Env
	txn   *mdbx.Txn
	state txnState
}

// ReadTxn begins a read-only transaction against e.
func (e *Env) ReadTxn() (*RoTxn, error) {
	t, err := e.mdbx.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		if errIsEnvClosed(err) {
			return nil, ErrDatabaseClosing
		}
		return nil, wrapEngineErr("begin read transaction", err)
	}
	return &RoTxn{env: e, txn: t, state: txnActive}, nil
}

// View runs fn inside a fresh read transaction, always releasing the
// transaction's reader slot on return — the discipline spec.md §9
// calls a "continuation" shape, bounding the transaction's lifetime to
// fn rather than handing out a long-lived *RoTxn. Nothing is copied:
// values decoded by zero-copy codecs inside fn alias the memory map and
// must not be retained after fn returns.
func (e *Env) View(fn func(txn *RoTxn) error) error {
	txn, err := e.ReadTxn()
	if err != nil {
		return err
	}
	defer txn.abortIfActive()
	return fn(txn)
}

// Abort discards the transaction's effects (a no-op for a read
// transaction beyond releasing its reader slot).
func (t *RoTxn) Abort() {
	if t.state != txnActive {
		return
	}
	t.txn.Abort()
	t.state = txnAborted
}

func (t *RoTxn) abortIfActive() {
	if t.state == txnActive {
		t.Abort()
	}
}

// listDatabases enumerates the names registered in the unnamed
// sub-database (spec.md §3: "names of named sub-databases are
// themselves stored as keys in the unnamed sub-database").
func (t *RoTxn) listDatabases() ([]string, error) {
	root, err := t.txn.OpenRoot(0)
	if err != nil {
		return nil, wrapEngineErr("open root sub-database", err)
	}
	cur, err := t.txn.OpenCursor(root)
	if err != nil {
		return nil, wrapEngineErr("open root cursor", err)
	}
	defer cur.Close()

	var names []string
	k, _, err := cur.Get(nil, nil, mdbx.First)
	for err == nil {
		names = append(names, string(k))
		k, _, err = cur.Get(nil, nil, mdbx.Next)
	}
	if err != nil && !isNotFound(wrapEngineErr("iterate root", err)) {
		return nil, wrapEngineErr("iterate root", err)
	}
	return names, nil
}

// RwTxn is a read-write transaction. Only one may be active per
// environment at a time (spec.md §4.4); additional begin attempts
// block on Env's writer slot until the current one resolves.
type RwTxn struct {
	env    *Env
	txn    *mdbx.Txn
	state  txnState
	parent *RwTxn
	// childActive disables this transaction's own operations while a
	// nested child is open (spec.md §3 invariant 5, §9 Design Notes).
	childActive bool
}

// WriteTxn begins a read-write transaction against e, blocking until no
// other write transaction is active on this environment.
func (e *Env) WriteTxn() (*RwTxn, error) {
	e.acquireWriterSlot()
	t, err := e.mdbx.BeginTxn(nil, 0)
	if err != nil {
		e.releaseWriterSlot()
		if errIsEnvClosed(err) {
			return nil, ErrDatabaseClosing
		}
		return nil, wrapEngineErr("begin write transaction", err)
	}
	return &RwTxn{env: e, txn: t, state: txnActive}, nil
}

// NestedWriteTxn begins a child write transaction whose changes are
// promoted into parent on commit and discarded on abort (spec.md §4.4).
// parent is locked (its write operations return an error) while the
// child is active.
func (e *Env) NestedWriteTxn(parent *RwTxn) (*RwTxn, error) {
	if parent.env != e {
		return nil, newErr(CodeBadTxn, "nested transaction's parent belongs to a different environment")
	}
	if err := parent.checkOperable(); err != nil {
		return nil, err
	}
	t, err := e.mdbx.BeginTxn(parent.txn, 0)
	if err != nil {
		return nil, wrapEngineErr("begin nested write transaction", err)
	}
	parent.childActive = true
	return &RwTxn{env: e, txn: t, state: txnActive, parent: parent}, nil
}

// checkOperable reports whether t may currently issue operations: it
// must be active and have no live child transaction.
func (t *RwTxn) checkOperable() error {
	if t.state != txnActive {
		return newErr(CodeBadTxn, "transaction is not active")
	}
	if t.childActive {
		return newErr(CodeBadTxn, "transaction has an active nested child")
	}
	return nil
}

// Commit publishes the transaction's writes. For a nested transaction
// this promotes its changes into the parent rather than the durable
// log; for a top-level transaction it commits to the environment.
func (t *RwTxn) Commit() error {
	if err := t.checkOperable(); err != nil {
		return err
	}
	kind := "toplevel"
	if t.parent != nil {
		kind = "nested"
	}
	start := time.Now()
	err := t.txn.Commit()
	observeCommit(kind, time.Since(start).Seconds())
	if err != nil {
		t.state = txnAborted
		t.release()
		return wrapEngineErr("commit transaction", err)
	}
	t.state = txnCommitted
	t.release()
	return nil
}

// Abort discards the transaction's writes.
func (t *RwTxn) Abort() {
	if t.state != txnActive {
		return
	}
	t.txn.Abort()
	t.state = txnAborted
	t.release()
}

func (t *RwTxn) abortIfActive() {
	if t.state == txnActive {
		t.Abort()
	}
}

// release clears the parent's childActive flag (if this was a nested
// transaction) or frees the environment's single-writer slot (if this
// was a top-level transaction).
func (t *RwTxn) release() {
	if t.parent != nil {
		t.parent.childActive = false
		return
	}
	t.env.releaseWriterSlot()
}

// AsRoTxn adapts a write transaction's underlying handle for read-path
// code shared with RoTxn (Get, cursors, iterators all operate on
// either) — callers may freely read through a write transaction.
func (t *RwTxn) AsRoTxn() *RoTxn {
	return &RoTxn{env: t.env, txn: t.txn, state: t.state}
}
