package heed

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"go.uber.org/zap"

	"github.com/meilisearch/heed-sub001/internal/mathutil"
)

// AEADAlgorithm names the page-encryption primitive bound by the
// encryption hook (encryption.go). Only the hook contract is specified
// by spec.md §1 ("out of scope: the AEAD primitives"); this enum picks
// the concrete algorithms golang.org/x/crypto offers a drop-in for.
type AEADAlgorithm int

const (
	AEADNone AEADAlgorithm = iota
	AEADChaCha20Poly1305
	AEADAES256GCM
)

// EncryptionOptions enables transparent page-level encryption-at-rest
// (spec.md §4.9). Key must be the exact key length the chosen algorithm
// requires; the environment open fails otherwise.
type EncryptionOptions struct {
	Algorithm AEADAlgorithm
	Key       []byte
}

// Options configures Open. MapSize uses datasize.ByteSize so callers can
// write human units (64*datasize.GB) instead of a raw byte count, per
// SPEC_FULL.md §1.
type Options struct {
	MapSize    datasize.ByteSize
	MaxReaders int
	MaxDBs     int
	Flags      EnvFlags
	Mode       os.FileMode
	TLSMode    TLSMode
	Encryption *EncryptionOptions

	// Logger receives structured diagnostics for environment open/close
	// and for panics inside custom comparators. Registry coalescing,
	// stale-reader reaping and encryption-hook failures are not logged.
	// A nil Logger is replaced with zap.NewNop().
	Logger *zap.Logger
}

// DefaultOptions returns the conservative defaults used when a caller
// only needs to override a couple of fields.
func DefaultOptions() Options {
	return Options{
		MapSize:    1 * datasize.GB,
		MaxReaders: 126,
		MaxDBs:     16,
		Mode:       0o644,
		TLSMode:    Pinned,
	}
}

// NewOptions returns DefaultOptions with a fluent builder surface,
// mirroring the original_source cookbook/EnvOpenOptions builder
// (SPEC_FULL.md §3); purely ergonomic, changes no semantics.
func NewOptions() *Options {
	o := DefaultOptions()
	return &o
}

func (o *Options) WithMapSize(size datasize.ByteSize) *Options {
	o.MapSize = size
	return o
}

func (o *Options) WithMaxDBs(n int) *Options {
	o.MaxDBs = n
	return o
}

func (o *Options) WithMaxReaders(n int) *Options {
	o.MaxReaders = n
	return o
}

func (o *Options) WithFlags(flags EnvFlags) *Options {
	o.Flags = flags
	return o
}

func (o *Options) WithTLSMode(mode TLSMode) *Options {
	o.TLSMode = mode
	return o
}

func (o *Options) WithEncryption(algo AEADAlgorithm, key []byte) *Options {
	o.Encryption = &EncryptionOptions{Algorithm: algo, Key: key}
	return o
}

func (o *Options) WithLogger(l *zap.Logger) *Options {
	o.Logger = l
	return o
}

// logger returns o.Logger or a no-op logger if unset.
func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Validate checks the invariants Open relies on: map_size must be a
// whole multiple of the OS page size (spec.md §3 invariant 8's sibling
// constraint on map geometry), and NoTLS/NoLock aren't supported by the
// bound engine.
func (o *Options) Validate() error {
	pageSize := int64(os.Getpagesize())
	size := int64(o.MapSize)
	if size <= 0 {
		return wrapErr(CodeInvalidMapSize, "map size must be positive", nil)
	}
	if size%pageSize != 0 {
		nearest := mathutil.CeilDiv(size, pageSize) * pageSize
		return wrapErr(CodeInvalidMapSize,
			fmt.Sprintf("map size must be a multiple of the OS page size (%d); round up to %d", pageSize, nearest), nil)
	}
	if o.Flags.unsupported() != 0 {
		return wrapErr(CodeBadOpenOptions, "NoTLS/NoLock are not supported by this engine binding", nil)
	}
	if o.Encryption != nil {
		if err := validateEncryptionKey(o.Encryption.Algorithm, o.Encryption.Key); err != nil {
			return wrapErr(CodeBadOpenOptions, "invalid encryption options", err)
		}
	}
	return nil
}

// equivalent reports whether o and other would produce the same live
// environment, used by the registry to decide whether a second Open of
// an already-open path may share the existing instance (spec.md §4.2).
func (o Options) equivalent(other Options) bool {
	if o.MapSize != other.MapSize || o.MaxReaders != other.MaxReaders || o.MaxDBs != other.MaxDBs {
		return false
	}
	if o.Flags != other.Flags || o.TLSMode != other.TLSMode {
		return false
	}
	oEnc, otherEnc := o.Encryption != nil, other.Encryption != nil
	if oEnc != otherEnc {
		return false
	}
	if oEnc && (o.Encryption.Algorithm != other.Encryption.Algorithm || string(o.Encryption.Key) != string(other.Encryption.Key)) {
		return false
	}
	return true
}
