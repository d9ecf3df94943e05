package codec_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/meilisearch/heed-sub001/codec"
)

// uint256.Int is a fixed-size [4]uint64 value — exactly the shape the
// POD codec targets as an opaque blob. It is deliberately NOT used to
// fill spec.md's U128/I128 slot here: POD's raw-memory cast doesn't
// preserve numeric ordering for a multi-limb type (see U128/I128 in
// int128_test.go for the codec that does).
func TestPODRoundTripUint256(t *testing.T) {
	var c codec.POD[uint256.Int]

	v := uint256.NewInt(0)
	v.SetFromDecimal("123456789012345678901234567890")

	b, err := c.Encode(*v)
	require.NoError(t, err)
	require.Len(t, b, 32)

	got, err := c.Decode(b)
	require.NoError(t, err)
	require.True(t, v.Eq(&got))
}

func TestPODDecodeWrongSize(t *testing.T) {
	var c codec.POD[uint256.Int]
	_, err := c.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestPODSliceRoundTrip(t *testing.T) {
	var c codec.PODSlice[uint64]
	in := []uint64{1, 2, 3, 42, 1 << 40}

	b, err := c.Encode(in)
	require.NoError(t, err)
	require.Len(t, b, 8*len(in))

	out, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, in, out)
}
