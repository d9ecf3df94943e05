// Package codec holds the encode/decode contract every typed Database
// binds a key and value type to, plus a catalog of built-in codecs.
package codec

// Encoder turns a value of type T into its on-disk byte representation.
// The returned slice may alias T's own backing storage, a stack buffer,
// or an owned allocation — callers treat it uniformly and must not
// retain it past the call that produced it.
type Encoder[T any] interface {
	Encode(v T) ([]byte, error)
}

// Decoder turns on-disk bytes into a value of type T. b's lifetime is
// the caller's current transaction; implementations that return a T
// aliasing b (zero-copy decode) document that the result is only valid
// for as long as b is.
type Decoder[T any] interface {
	Decode(b []byte) (T, error)
}

// Codec pairs an Encoder and Decoder for one Go type, the unit every
// Database[K, V] binds per side of its key/value pair.
type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

// EncoderFunc adapts a plain function to Encoder.
type EncoderFunc[T any] func(v T) ([]byte, error)

func (f EncoderFunc[T]) Encode(v T) ([]byte, error) { return f(v) }

// DecoderFunc adapts a plain function to Decoder.
type DecoderFunc[T any] func(b []byte) (T, error)

func (f DecoderFunc[T]) Decode(b []byte) (T, error) { return f(b) }

// Funcs builds a Codec from a pair of plain functions.
type Funcs[T any] struct {
	EncodeFunc func(v T) ([]byte, error)
	DecodeFunc func(b []byte) (T, error)
}

func (c Funcs[T]) Encode(v T) ([]byte, error) { return c.EncodeFunc(v) }
func (c Funcs[T]) Decode(b []byte) (T, error)  { return c.DecodeFunc(b) }
