package codec

import (
	"fmt"

	"github.com/holiman/uint256"
)

// U128 is the dedicated, fixed-width, big-endian codec for 128-bit
// unsigned integers — the same family as Uint[T] (codec/integers.go),
// not a raw-memory reinterpret cast. uint256.Int stores its four
// 64-bit limbs least-significant-first internally, so an unsafe cast
// of its memory (as POD would do) does not sort in numeric order;
// Bytes32/SetBytes already convert through a big-endian wire form, so
// comparing the encoded bytes agrees with comparing the magnitudes.
type U128 struct{}

func (U128) Encode(v uint256.Int) ([]byte, error) {
	full := v.Bytes32()
	for _, b := range full[:16] {
		if b != 0 {
			return nil, fmt.Errorf("codec: U128 value overflows 128 bits")
		}
	}
	out := make([]byte, 16)
	copy(out, full[16:])
	return out, nil
}

func (U128) Decode(b []byte) (uint256.Int, error) {
	var z uint256.Int
	if len(b) != 16 {
		return z, fmt.Errorf("codec: expected 16-byte U128, got %d bytes", len(b))
	}
	z.SetBytes(b)
	return z, nil
}

// I128 is the signed counterpart of U128, sign-bit-biased the same way
// Int[T] biases I8..I64 so two's complement ordering matches
// byte-lexicographic order. v is the raw 128-bit two's complement bit
// pattern held in a uint256.Int (e.g. 2^128-1 represents -1), since Go
// and this dependency stack have no native signed 128-bit type.
type I128 struct{}

func (I128) Encode(v uint256.Int) ([]byte, error) {
	full := v.Bytes32()
	for _, b := range full[:16] {
		if b != 0 {
			return nil, fmt.Errorf("codec: I128 value overflows 128 bits")
		}
	}
	out := make([]byte, 16)
	copy(out, full[16:])
	out[0] ^= 0x80
	return out, nil
}

func (I128) Decode(b []byte) (uint256.Int, error) {
	var z uint256.Int
	if len(b) != 16 {
		return z, fmt.Errorf("codec: expected 16-byte I128, got %d bytes", len(b))
	}
	biased := append([]byte(nil), b...)
	biased[0] ^= 0x80
	z.SetBytes(biased)
	return z, nil
}
