package codec

// Lazy holds raw, still-undecoded bytes from a read. Decode() defers
// the decode cost, which matters for iteration paths that skip most
// values (filtering by key alone) — spec.md's LazyDecode<C> wrapper.
type Lazy[T any] struct {
	raw   []byte
	inner Codec[T]
}

// NewLazy wraps raw bytes for deferred decoding with c.
func NewLazy[T any](raw []byte, c Codec[T]) Lazy[T] {
	return Lazy[T]{raw: raw, inner: c}
}

// Raw returns the undecoded bytes, valid for as long as the owning
// transaction is.
func (l Lazy[T]) Raw() []byte { return l.raw }

// Decode runs the wrapped codec's Decode on the stored bytes.
func (l Lazy[T]) Decode() (T, error) { return l.inner.Decode(l.raw) }

// LazyDecode adapts a Codec[T] into a Decoder[Lazy[T]] whose Decode
// just captures the bytes instead of running the inner decode
// immediately; per spec.md's catalog this wrapper has no encode side.
type LazyDecode[T any] struct {
	Inner Codec[T]
}

func (c LazyDecode[T]) Decode(b []byte) (Lazy[T], error) {
	return NewLazy(b, c.Inner), nil
}
