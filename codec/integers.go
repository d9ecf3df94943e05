package codec

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Endianness selects the byte order integer codecs use. Big-endian is
// the default because it preserves numeric ordering under the engine's
// byte-lexicographic key comparator (spec.md §4.7's integer-key fast
// path assumes this).
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

// Uint is a codec for any unsigned fixed-width integer type, encoding
// to exactly its width in bytes.
type Uint[T constraints.Unsigned] struct {
	Width int
	Order Endianness
}

func newUint[T constraints.Unsigned](width int) Uint[T] {
	return Uint[T]{Width: width, Order: BigEndian}
}

// U8 .. U64 are the built-in unsigned integer codecs.
var (
	U8  = newUint[uint8](1)
	U16 = newUint[uint16](2)
	U32 = newUint[uint32](4)
	U64 = newUint[uint64](8)
)

func (c Uint[T]) Encode(v T) ([]byte, error) {
	out := make([]byte, c.Width)
	u := uint64(v)
	if c.Order == LittleEndian {
		putUintLE(out, u)
	} else {
		putUintBE(out, u)
	}
	return out, nil
}

func (c Uint[T]) Decode(b []byte) (T, error) {
	var zero T
	if len(b) != c.Width {
		return zero, fmt.Errorf("codec: expected %d-byte integer, got %d bytes", c.Width, len(b))
	}
	var u uint64
	if c.Order == LittleEndian {
		u = getUintLE(b)
	} else {
		u = getUintBE(b)
	}
	return T(u), nil
}

// Int is a codec for any signed fixed-width integer type. Values are
// biased by flipping the sign bit before encoding so that two's
// complement ordering matches the unsigned byte-lexicographic order
// the engine's default comparator uses — without this, -1 would sort
// after +1 under plain byte comparison.
type Int[T constraints.Signed] struct {
	Width int
	Order Endianness
}

func newInt[T constraints.Signed](width int) Int[T] {
	return Int[T]{Width: width, Order: BigEndian}
}

var (
	I8  = newInt[int8](1)
	I16 = newInt[int16](2)
	I32 = newInt[int32](4)
	I64 = newInt[int64](8)
)

func (c Int[T]) Encode(v T) ([]byte, error) {
	out := make([]byte, c.Width)
	signBit := uint64(1) << (uint(c.Width)*8 - 1)
	u := uint64(v) ^ signBit
	if c.Order == LittleEndian {
		putUintLE(out, u)
	} else {
		putUintBE(out, u)
	}
	return out, nil
}

func (c Int[T]) Decode(b []byte) (T, error) {
	var zero T
	if len(b) != c.Width {
		return zero, fmt.Errorf("codec: expected %d-byte integer, got %d bytes", c.Width, len(b))
	}
	var u uint64
	if c.Order == LittleEndian {
		u = getUintLE(b)
	} else {
		u = getUintBE(b)
	}
	signBit := uint64(1) << (uint(c.Width)*8 - 1)
	return T(u ^ signBit), nil
}

func putUintBE(out []byte, u uint64) {
	switch len(out) {
	case 1:
		out[0] = byte(u)
	case 2:
		binary.BigEndian.PutUint16(out, uint16(u))
	case 4:
		binary.BigEndian.PutUint32(out, uint32(u))
	case 8:
		binary.BigEndian.PutUint64(out, u)
	}
}

func getUintBE(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

func putUintLE(out []byte, u uint64) {
	switch len(out) {
	case 1:
		out[0] = byte(u)
	case 2:
		binary.LittleEndian.PutUint16(out, uint16(u))
	case 4:
		binary.LittleEndian.PutUint32(out, uint32(u))
	case 8:
		binary.LittleEndian.PutUint64(out, u)
	}
}

func getUintLE(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}
