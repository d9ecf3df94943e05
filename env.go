package heed

import (
	"context"
	"reflect"
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/meilisearch/heed-sub001/internal/mathutil"
)

// dbTypeBinding records the key/value Go types a sub-database name was
// first opened with, enforcing spec.md §3 invariant 9 for the lifetime
// of the owning environment (Open Question 1, SPEC_FULL.md §4: the
// binding is purged when the environment itself closes, not when an
// individual Database[K,V] handle is garbage collected).
type dbTypeBinding struct {
	keyType   reflect.Type
	valueType reflect.Type
}

// Env is a live, typed handle to an open storage directory. Exactly one
// Env exists per canonical path at a time; obtain one through Open,
// never by constructing this struct directly.
type Env struct {
	mu sync.Mutex

	canonPath string
	opts      Options
	mdbx      *mdbx.Env
	log       *zap.Logger

	writerSem  *semaphore.Weighted // single-writer-at-a-time gate, spec.md §4.4
	dbBindings map[string]*dbTypeBinding

	comparators *comparatorBridge
	encryptor   *encryptionHook

	closed bool
}

// Open acquires the environment at path, opening it fresh if this
// process has no live instance for its canonical form, or returning the
// existing instance if opts match what it was opened with (spec.md §3
// invariant 1, §4.2).
func Open(path string, opts Options) (*Env, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	env, err := globalRegistry.acquire(path, opts, openEngine)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// openEngine performs the actual mdbx.Env creation; called at most once
// per canonical path by the registry (via singleflight).
func openEngine(canon string, opts Options) (*Env, error) {
	menv, err := mdbx.NewEnv()
	if err != nil {
		return nil, wrapEngineErr("create environment", err)
	}

	if err := menv.SetOption(mdbx.OptMaxDB, uint64(opts.MaxDBs)); err != nil {
		menv.Close()
		return nil, wrapEngineErr("set max sub-databases", err)
	}
	if err := menv.SetOption(mdbx.OptMaxReaders, uint64(opts.MaxReaders)); err != nil {
		menv.Close()
		return nil, wrapEngineErr("set max readers", err)
	}
	if err := menv.SetGeometry(-1, -1, int(opts.MapSize), -1, -1, -1); err != nil {
		menv.Close()
		return nil, wrapEngineErr("set map geometry", err)
	}

	flags := opts.Flags.toEngine()
	if opts.TLSMode == Portable {
		flags |= mdbx.NoTLS
	}

	e := &Env{
		canonPath:  canon,
		opts:       opts,
		mdbx:       menv,
		log:        opts.logger(),
		writerSem:  semaphore.NewWeighted(1),
		dbBindings: make(map[string]*dbTypeBinding),
	}

	if opts.Encryption != nil {
		hook, err := newEncryptionHook(opts.Encryption.Algorithm, opts.Encryption.Key)
		if err != nil {
			menv.Close()
			return nil, wrapErr(CodeBadOpenOptions, "configure encryption", err)
		}
		e.encryptor = hook
		if err := menv.SetEncryptHook(hook.engineCallback); err != nil {
			menv.Close()
			return nil, wrapEngineErr("install encryption hook", err)
		}
	}

	e.comparators = newComparatorBridge(e.log)

	if err := menv.Open(canon, flags, uint32(opts.Mode)); err != nil {
		menv.Close()
		return nil, wrapEngineErr("open environment", err)
	}

	e.log.Info("environment opened", zap.String("path", canon), zap.Uint64("map_size", uint64(opts.MapSize)))
	return e, nil
}

// closeEngine tears down the underlying mdbx handle. Called by the
// registry exactly once, when the last reference drops.
func (e *Env) closeEngine() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.mdbx.Close()
	e.log.Info("environment closed", zap.String("path", e.canonPath))
	return nil
}

// Close releases this reference to the environment. The underlying
// engine handle is only torn down once every reference (across every
// Open call for this path in the process) has been closed.
func (e *Env) Close() error {
	return globalRegistry.release(e.canonPath)
}

// PrepareForClosing marks the registry entry for e's path as closing
// and returns a signal that fires once the last reference drops,
// letting an orchestrating caller wait before reopening the same path
// (spec.md §4.2, §5).
func (e *Env) PrepareForClosing() *closeSignal {
	return globalRegistry.prepareForClosing(e.canonPath)
}

// checkTypeBinding enforces invariant 9: the first open of name within
// this environment's lifetime fixes its codec types.
func (e *Env) checkTypeBinding(name string, keyType, valueType reflect.Type) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.dbBindings[name]
	if !ok {
		e.dbBindings[name] = &dbTypeBinding{keyType: keyType, valueType: valueType}
		return nil
	}
	if b.keyType != keyType || b.valueType != valueType {
		return ErrDatabaseTypeMismatch
	}
	return nil
}

// acquireWriterSlot blocks until this environment has no other active
// write transaction (spec.md §4.4: only one write transaction may be
// active per environment at a time).
func (e *Env) acquireWriterSlot() {
	_ = e.writerSem.Acquire(context.Background(), 1)
}

func (e *Env) releaseWriterSlot() {
	e.writerSem.Release(1)
}

// ForceSync flushes the environment's data buffers to disk.
func (e *Env) ForceSync() error {
	if err := e.mdbx.Sync(true, false); err != nil {
		return wrapEngineErr("force sync", err)
	}
	return nil
}

// ClearStaleReaders scans the reader lock table and removes entries
// belonging to processes that no longer exist, returning the count
// removed.
func (e *Env) ClearStaleReaders() (int, error) {
	n, err := e.mdbx.ReaderCheck()
	if err != nil {
		return 0, wrapEngineErr("clear stale readers", err)
	}
	return n, nil
}

// Resize changes the environment's map size. The caller must ensure no
// transaction is active anywhere in the process for this environment;
// the wrapper documents this requirement rather than enforcing it
// (spec.md §4.2 concurrency note).
func (e *Env) Resize(newSize uint64) error {
	if err := e.mdbx.SetGeometry(-1, -1, int(newSize), -1, -1, -1); err != nil {
		return wrapEngineErr("resize", err)
	}
	return nil
}

// CopyToFile writes a consistent backup of the environment to dst. When
// compact is true, free pages are omitted from the copy.
func (e *Env) CopyToFile(dst string, compact bool) error {
	flags := mdbx.CopyFlags(0)
	if compact {
		flags |= mdbx.CopyCompact
	}
	if err := e.mdbx.CopyFile(dst, flags); err != nil {
		return wrapEngineErr("copy to file", err)
	}
	return nil
}

// CopyToFD streams a consistent backup of the environment to an
// already-open file descriptor (spec.md §6's copy_to_fd entry point),
// the same mdbx copy machinery as CopyToFile but without mdbx owning
// the destination path — the caller may be writing to a pipe or a
// descriptor obtained from somewhere other than a plain path open.
func (e *Env) CopyToFD(fd uintptr, compact bool) error {
	flags := mdbx.CopyFlags(0)
	if compact {
		flags |= mdbx.CopyCompact
	}
	if err := e.mdbx.CopyFD(mdbx.Filehandle(fd), flags); err != nil {
		return wrapEngineErr("copy to fd", err)
	}
	return nil
}

// EnvInfo mirrors spec.md §4.2's info() return shape.
type EnvInfo struct {
	// MapAddr is always 0: mdbx-go exposes the map geometry, not the
	// map's base address, to Go callers.
	MapAddr    uintptr
	MapSize    uint64
	LastPageNo uint64
	LastTxnID  uint64
	MaxReaders uint
	NumReaders uint
}

// Info reports the environment's current geometry and reader-table
// occupancy.
func (e *Env) Info() (EnvInfo, error) {
	info, err := e.mdbx.Info(nil)
	if err != nil {
		return EnvInfo{}, wrapEngineErr("environment info", err)
	}
	readerSlotsInUse.WithLabelValues(e.canonPath).Set(float64(info.NumReaders))
	return EnvInfo{
		MapSize:    uint64(info.MapSize),
		LastPageNo: info.LastPNO,
		LastTxnID:  info.LastTxnID,
		MaxReaders: uint(info.MaxReaders),
		NumReaders: uint(info.NumReaders),
	}, nil
}

// MaxKeySize reports the maximum byte length of a key or duplicate
// value this environment will accept (spec.md §3 invariant 8).
func (e *Env) MaxKeySize() int {
	return e.mdbx.MaxKeySize()
}

// NonFreePagesSize lists every named sub-database, then stats each one
// from its own short-lived read transaction concurrently (bounded by
// MaxReaders) and sums leaf+branch+overflow page counts, per spec.md
// §4.2. Each worker opens an independent RoTxn rather than sharing one,
// since a single mdbx transaction handle is not safe for concurrent use
// across goroutines.
func (e *Env) NonFreePagesSize() (uint64, error) {
	listTxn, err := e.ReadTxn()
	if err != nil {
		return 0, err
	}
	names, err := listTxn.listDatabases()
	listTxn.abortIfActive()
	if err != nil {
		return 0, err
	}

	sizes := make([]uint64, len(names))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(maxStatWorkers(e.opts.MaxReaders))
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			rtxn, err := e.ReadTxn()
			if err != nil {
				return err
			}
			defer rtxn.abortIfActive()

			dbi, err := rtxn.txn.OpenDBI(name, 0, nil, nil)
			if err != nil {
				return wrapEngineErr("open sub-database for stat", err)
			}
			stat, err := rtxn.txn.Stat(dbi)
			if err != nil {
				return wrapEngineErr("stat sub-database", err)
			}
			pages := stat.BranchPages + stat.LeafPages + stat.OverflowPages
			sizes[i] = pages * uint64(stat.PSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total uint64
	for _, s := range sizes {
		sum, overflowed := mathutil.SafeAdd(total, s)
		if overflowed {
			return 0, newErr(CodeUnknown, "non-free-pages size overflowed uint64")
		}
		total = sum
	}
	return total, nil
}

// maxStatWorkers bounds NonFreePagesSize's concurrency below the
// environment's reader-slot budget, leaving room for other readers.
func maxStatWorkers(maxReaders int) int {
	n := maxReaders / 2
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}

func errIsEnvClosed(err error) bool {
	return errors.Is(err, mdbx.ErrEnvClosed)
}
