package heed

import (
	"bytes"
	"os"

	"go.uber.org/zap"
)

// CompareFunc is a user-supplied key or duplicate-value ordering
// function, returning negative/zero/positive exactly like bytes.Compare
// (spec.md §4.7).
type CompareFunc func(a, b []byte) int

// comparatorBridge installs CompareFunc callbacks for sub-databases
// that request a custom order, guarding every invocation with a panic
// barrier: the engine calls into Go across a C-ABI transaction boundary
// and must never see a Go panic unwind through it (spec.md §7 fatal
// conditions).
type comparatorBridge struct {
	log *zap.Logger
}

func newComparatorBridge(log *zap.Logger) *comparatorBridge {
	return &comparatorBridge{log: log}
}

// trampoline wraps a user CompareFunc so a panic inside it is logged
// and then aborts the process rather than propagating — unwinding
// across the engine's C-ABI boundary is undefined behavior.
func (c *comparatorBridge) trampoline(fn CompareFunc) func(a, b []byte) int {
	return func(a, b []byte) (result int) {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("panic inside custom comparator, aborting process",
					zap.Any("recovered", r))
				os.Exit(2)
			}
		}()
		return fn(a, b)
	}
}

// DefaultCompare is the engine's built-in byte-lexicographic order,
// exposed so prefix/range math (successor/predecessor) can be computed
// without installing a callback — the fast path spec.md §4.7 describes
// for the non-custom case.
func DefaultCompare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// successor returns the lexicographic successor of p: increment the
// last byte, popping trailing 0xFF bytes first, per spec.md §4.3's
// prefix-iteration algorithm. ok is false when p has no successor
// (all bytes are 0xFF, including the empty-prefix edge case of a
// zero-length p, which has no representable successor).
func successor(p []byte) (out []byte, ok bool) {
	out = append([]byte(nil), p...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out[:i+1], true
		}
		out = out[:i]
	}
	return nil, false
}

// predecessor returns the lexicographic predecessor of p. The prefix
// iterators do not call it: both directions bound a prefix with
// successor. ok is false when p is empty or entirely zero bytes with
// nothing before it.
func predecessor(p []byte) (out []byte, ok bool) {
	if len(p) == 0 {
		return nil, false
	}
	out = append([]byte(nil), p...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0x00 {
			out[i]--
			if out[i] == 0xFF {
				out = append(out, 0xFF)
			}
			return out, true
		}
		out = out[:i]
	}
	return nil, false
}
