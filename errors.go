package heed

import (
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"
	"github.com/pkg/errors"
)

// ErrorCode classifies every error this package can return into the
// taxonomy described by the wrapper's error handling design: engine
// errors surfaced from mdbx, codec errors raised by user encode/decode
// callbacks, wrapper-level errors raised by the registry/env/database
// layer, and plain I/O errors bubbled up from the filesystem.
type ErrorCode int

const (
	// CodeUnknown is the zero value; never returned deliberately.
	CodeUnknown ErrorCode = iota

	// Engine errors (mdbx/lmdb family).
	CodeKeyExist
	CodeNotFound
	CodePageNotFound
	CodeCorrupted
	CodePanic
	CodeVersionMismatch
	CodeInvalidFile
	CodeMapFull
	CodeDBsFull
	CodeReadersFull
	CodeTxnFull
	CodeCursorFull
	CodePageFull
	CodeMapResized
	CodeIncompatible
	CodeBadReaderSlot
	CodeBadTxn
	CodeBadValSize
	CodeBadDBI

	// Codec errors.
	CodeEncoding
	CodeDecoding

	// Wrapper errors.
	CodeEnvAlreadyOpened
	CodeBadOpenOptions
	CodeInvalidMapSize
	CodeDatabaseClosing
	CodeDatabaseTypeMismatch
	CodeKeyTooLong
	CodeReservedSpaceUnderwritten

	// I/O.
	CodeIO
)

func (c ErrorCode) String() string {
	switch c {
	case CodeKeyExist:
		return "key-exists"
	case CodeNotFound:
		return "not-found"
	case CodePageNotFound:
		return "page-not-found"
	case CodeCorrupted:
		return "corrupted"
	case CodePanic:
		return "panic"
	case CodeVersionMismatch:
		return "version-mismatch"
	case CodeInvalidFile:
		return "invalid-file"
	case CodeMapFull:
		return "map-full"
	case CodeDBsFull:
		return "dbs-full"
	case CodeReadersFull:
		return "readers-full"
	case CodeTxnFull:
		return "txn-full"
	case CodeCursorFull:
		return "cursor-full"
	case CodePageFull:
		return "page-full"
	case CodeMapResized:
		return "map-resized"
	case CodeIncompatible:
		return "incompatible"
	case CodeBadReaderSlot:
		return "bad-reader-slot"
	case CodeBadTxn:
		return "bad-txn"
	case CodeBadValSize:
		return "bad-value-size"
	case CodeBadDBI:
		return "bad-dbi"
	case CodeEncoding:
		return "encoding-failed"
	case CodeDecoding:
		return "decoding-failed"
	case CodeEnvAlreadyOpened:
		return "env-already-opened"
	case CodeBadOpenOptions:
		return "bad-open-options"
	case CodeInvalidMapSize:
		return "invalid-map-size"
	case CodeDatabaseClosing:
		return "database-closing"
	case CodeDatabaseTypeMismatch:
		return "database-already-opened-with-different-types"
	case CodeKeyTooLong:
		return "key-too-long"
	case CodeReservedSpaceUnderwritten:
		return "reserved-space-underwritten"
	case CodeIO:
		return "io-error"
	default:
		return "unknown"
	}
}

// Error is the single sum type every public method returns its failures as.
type Error struct {
	code ErrorCode
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("heed: %s: %s: %v", e.code, e.msg, e.err)
	}
	return fmt.Sprintf("heed: %s: %s", e.code, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Code reports which branch of the error taxonomy produced e.
func (e *Error) Code() ErrorCode { return e.code }

func newErr(code ErrorCode, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func wrapErr(code ErrorCode, msg string, err error) *Error {
	return &Error{code: code, msg: msg, err: errors.WithStack(err)}
}

// wrapEngineErr translates an mdbx error into the wrapper's taxonomy.
// mdbx.NotFound is deliberately NOT translated here: callers that want
// "missing key" folded into (nil, false) do that translation themselves
// at the point the user-facing model calls for it (point get, seek,
// delete-returns-bool); every other caller sees it surfaced as CodeNotFound.
func wrapEngineErr(op string, err error) *Error {
	if err == nil {
		return nil
	}
	code := CodeUnknown
	switch {
	case errors.Is(err, mdbx.NotFound):
		code = CodeNotFound
	case errors.Is(err, mdbx.KeyExist):
		code = CodeKeyExist
	case errors.Is(err, mdbx.PageNotFound):
		code = CodePageNotFound
	case errors.Is(err, mdbx.Corrupted):
		code = CodeCorrupted
	case errors.Is(err, mdbx.Panic):
		code = CodePanic
	case errors.Is(err, mdbx.VersionMismatch):
		code = CodeVersionMismatch
	case errors.Is(err, mdbx.Invalid):
		code = CodeInvalidFile
	case errors.Is(err, mdbx.MapFull):
		code = CodeMapFull
	case errors.Is(err, mdbx.DBSFull):
		code = CodeDBsFull
	case errors.Is(err, mdbx.ReadersFull):
		code = CodeReadersFull
	case errors.Is(err, mdbx.TxnFull):
		code = CodeTxnFull
	case errors.Is(err, mdbx.CursorFull):
		code = CodeCursorFull
	case errors.Is(err, mdbx.PageFull):
		code = CodePageFull
	case errors.Is(err, mdbx.MapResized):
		code = CodeMapResized
	case errors.Is(err, mdbx.Incompatible):
		code = CodeIncompatible
	case errors.Is(err, mdbx.BadRSlot):
		code = CodeBadReaderSlot
	case errors.Is(err, mdbx.BadTxn):
		code = CodeBadTxn
	case errors.Is(err, mdbx.BadValSize):
		code = CodeBadValSize
	case errors.Is(err, mdbx.BadDBI):
		code = CodeBadDBI
	}
	return wrapErr(code, op, err)
}

// isNotFound reports whether err is the engine's not-found sentinel,
// wrapped or not — used by callers that fold "missing" into (zero, false).
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.code == CodeNotFound
	}
	return errors.Is(err, mdbx.NotFound)
}

var (
	// ErrEnvAlreadyOpened is returned by Open when the canonical path is
	// already live in the registry with different options.
	ErrEnvAlreadyOpened = newErr(CodeEnvAlreadyOpened, "environment already opened with different options")
	// ErrDatabaseClosing is returned when a registry entry is mid-teardown.
	ErrDatabaseClosing = newErr(CodeDatabaseClosing, "environment is closing")
	// ErrDatabaseTypeMismatch is returned by OpenDatabase/CreateDatabase
	// when a sub-database name was already bound to different codec types.
	ErrDatabaseTypeMismatch = newErr(CodeDatabaseTypeMismatch, "sub-database already opened with different key/value types")
)
