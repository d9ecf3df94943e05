package codec

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

var msgpackHandle = &codec.MsgpackHandle{}

// MsgPack is the second "serialized-by-crate" wrapper in the built-in
// catalog, backed by ugorji/go/codec's MessagePack implementation.
type MsgPack[T any] struct{}

func (MsgPack[T]) Encode(v T) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgPack[T]) Decode(b []byte) (T, error) {
	var v T
	dec := codec.NewDecoderBytes(b, msgpackHandle)
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}
