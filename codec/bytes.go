package codec

import "fmt"

// Bytes is the zero-copy identity codec: a raw byte slice in, the same
// bytes (aliasing the transaction's memory map) out.
type Bytes struct{}

func (Bytes) Encode(v []byte) ([]byte, error) { return v, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// FixedSizeBytes is a zero-copy codec for byte slices of the fixed
// length held in Size, length-checked on encode and decode.
type FixedSizeBytes[N int] struct {
	Size int
}

// NewFixedSizeBytes returns a FixedSizeBytes codec enforcing exactly n
// bytes per value.
func NewFixedSizeBytes(n int) FixedSizeBytes[int] {
	return FixedSizeBytes[int]{Size: n}
}

func (c FixedSizeBytes[N]) Encode(v []byte) ([]byte, error) {
	if len(v) != c.Size {
		return nil, fmt.Errorf("codec: fixed-size value must be %d bytes, got %d", c.Size, len(v))
	}
	return v, nil
}

func (c FixedSizeBytes[N]) Decode(b []byte) ([]byte, error) {
	if len(b) != c.Size {
		return nil, fmt.Errorf("codec: fixed-size value must be %d bytes, got %d", c.Size, len(b))
	}
	return b, nil
}
