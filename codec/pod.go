package codec

import (
	"fmt"
	"unsafe"
)

// POD is a zero-copy codec for fixed-size "plain old data" types — no
// pointers, no padding-sensitive layout — reinterpreting the backing
// bytes in place rather than copying through an intermediate decoder.
// This is the same unsafe-cast discipline mdbx-go's own buffer helpers
// use at the cgo boundary.
//
// POD's wire format is T's native in-memory layout (host endianness,
// limb order as the Go runtime lays the struct out), so it preserves
// byte-lexicographic order only by coincidence, never by contract. It
// is NOT appropriate for spec.md's U128/I128 catalog slots or anything
// else whose sub-database relies on comparator order — see U128/I128
// in int128.go for the real, fixed-width big-endian codecs that slot
// fills. Use POD only for opaque fixed-size blobs where ordering
// doesn't matter.
type POD[T any] struct{}

func (POD[T]) Encode(v T) ([]byte, error) {
	size := unsafe.Sizeof(v)
	return unsafe.Slice((*byte)(unsafe.Pointer(&v)), size), nil
}

func (POD[T]) Decode(b []byte) (T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(b) != size {
		return zero, fmt.Errorf("codec: POD value must be %d bytes, got %d", size, len(b))
	}
	return *(*T)(unsafe.Pointer(&b[0])), nil
}

// PODSlice is a zero-copy codec for a slice of fixed-size POD elements.
type PODSlice[T any] struct{}

func (PODSlice[T]) Encode(v []T) ([]byte, error) {
	if len(v) == 0 {
		return nil, nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), elemSize*len(v)), nil
}

func (PODSlice[T]) Decode(b []byte) ([]T, error) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 || len(b)%elemSize != 0 {
		return nil, fmt.Errorf("codec: POD slice length %d is not a multiple of element size %d", len(b), elemSize)
	}
	if len(b) == 0 {
		return nil, nil
	}
	n := len(b) / elemSize
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}
